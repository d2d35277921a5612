package lexicon_test

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/pitchperfect/internal/domain/lexicon"
)

func TestTokenize(t *testing.T) {
	Convey("Given raw transcript text", t, func() {
		Convey("When it has mixed case and punctuation", func() {
			tokens := lexicon.Tokenize("  Our Platform, solves the  PAIN! -- of (customers).")

			Convey("Then tokens are lower-cased and trimmed", func() {
				So(tokens, ShouldResemble, []string{"our", "platform", "solves", "the", "pain", "of", "customers"})
			})
		})

		Convey("When it is empty or whitespace", func() {
			So(lexicon.Tokenize(""), ShouldBeEmpty)
			So(lexicon.Tokenize(" \n\t "), ShouldBeEmpty)
		})

		Convey("When inner punctuation is present", func() {
			So(lexicon.Tokenize("b2b co-founder's"), ShouldResemble, []string{"b2b", "co-founder's"})
		})
	})
}

func TestCommonPrefix(t *testing.T) {
	Convey("Given two token snapshots", t, func() {
		a := []string{"we", "sell", "to", "shops"}

		So(lexicon.CommonPrefix(a, []string{"we", "sell", "to", "shops", "today"}), ShouldEqual, 4)
		So(lexicon.CommonPrefix(a, []string{"we", "sell"}), ShouldEqual, 2)
		So(lexicon.CommonPrefix(a, []string{"we", "sold", "to", "shops"}), ShouldEqual, 1)
		So(lexicon.CommonPrefix(nil, a), ShouldEqual, 0)
	})
}

func TestDefaultLexicon(t *testing.T) {
	Convey("Given the built-in lexicon", t, func() {
		lex := lexicon.Default()

		Convey("Then it exposes six categories in pitch order", func() {
			So(lex.Categories(), ShouldResemble, []lexicon.Category{
				lexicon.CategoryProblem,
				lexicon.CategorySolution,
				lexicon.CategoryMarket,
				lexicon.CategoryBusinessModel,
				lexicon.CategoryTraction,
				lexicon.CategoryDifferentiation,
			})
		})

		Convey("Then categorized words are also positive", func() {
			cat, ok := lex.CategoryOf("revenue")
			So(ok, ShouldBeTrue)
			So(cat, ShouldEqual, lexicon.CategoryBusinessModel)
			So(lex.IsPositive("revenue"), ShouldBeTrue)
		})

		Convey("Then general terms are positive without a category", func() {
			_, ok := lex.CategoryOf("team")
			So(ok, ShouldBeFalse)
			So(lex.IsPositive("team"), ShouldBeTrue)
		})

		Convey("Then fillers are recognised", func() {
			So(lex.IsFiller("um"), ShouldBeTrue)
			So(lex.IsFiller("basically"), ShouldBeTrue)
			So(lex.IsPositive("um"), ShouldBeFalse)
		})

		Convey("Then word lists are exposed sorted", func() {
			problem := lex.Keywords(lexicon.CategoryProblem)
			So(problem, ShouldContain, "pain")
			So(sort.StringsAreSorted(problem), ShouldBeTrue)
			So(lex.Fillers(), ShouldContain, "um")
			So(lex.Uncategorized(), ShouldContain, "team")
			So(lex.Uncategorized(), ShouldNotContain, "revenue")
			So(lex.Keywords("unknown"), ShouldBeEmpty)
		})

		Convey("Then repeated calls return the same set", func() {
			So(lexicon.Default(), ShouldEqual, lex)
		})
	})
}

func TestClassify(t *testing.T) {
	Convey("Given a tokenized transcript", t, func() {
		lex := lexicon.Default()
		tokens := lexicon.Tokenize("Um our platform fixes the pain, our platform has revenue and a great team")
		counts := lex.Classify(tokens)

		Convey("Then words, keywords and fillers are counted", func() {
			So(counts.Words, ShouldEqual, 14)
			So(counts.Filler, ShouldEqual, 1)
			So(counts.Positive, ShouldEqual, 5) // platform x2, pain, revenue, team
			So(counts.Categorized, ShouldEqual, 4)
		})

		Convey("Then category coverage counts distinct categories", func() {
			So(counts.Covered(), ShouldEqual, 3)
			So(counts.ByCategory[lexicon.CategorySolution], ShouldEqual, 2)
		})

		Convey("Then the filler ratio is relative to all words", func() {
			So(counts.FillerRatio(), ShouldAlmostEqual, 1.0/14.0)
		})

		Convey("Then an empty sequence has a zero ratio", func() {
			So(lex.Classify(nil).FillerRatio(), ShouldEqual, 0)
		})
	})
}

func TestNew(t *testing.T) {
	Convey("Given custom word lists", t, func() {
		Convey("When no categories are given", func() {
			_, err := lexicon.New([]string{"a"}, nil, nil)
			So(errors.Is(err, lexicon.ErrInvalidLexicon), ShouldBeTrue)
		})

		Convey("When a word appears in two categories", func() {
			_, err := lexicon.New(nil, nil, map[lexicon.Category][]string{
				lexicon.CategoryProblem:  {"pain"},
				lexicon.CategorySolution: {"Pain"},
			})
			So(errors.Is(err, lexicon.ErrInvalidLexicon), ShouldBeTrue)
		})

		Convey("When a keyword is also a filler", func() {
			_, err := lexicon.New(nil, []string{"like"}, map[lexicon.Category][]string{
				lexicon.CategoryProblem: {"like"},
			})
			So(errors.Is(err, lexicon.ErrInvalidLexicon), ShouldBeTrue)
		})

		Convey("When custom categories are mixed with built-in ones", func() {
			lex, err := lexicon.New(nil, nil, map[lexicon.Category][]string{
				"zeta":                   {"z"},
				lexicon.CategoryTraction: {"growth"},
				"alpha":                  {"a"},
			})
			So(err, ShouldBeNil)
			So(lex.Categories(), ShouldResemble, []lexicon.Category{lexicon.CategoryTraction, "alpha", "zeta"})
		})
	})
}

func TestLoadFile(t *testing.T) {
	Convey("Given a lexicon file on disk", t, func() {
		dir := t.TempDir()

		Convey("When it is valid YAML", func() {
			path := filepath.Join(dir, "lexicon.yaml")
			doc := "positive: [team]\ncategories:\n  problem: [Pain]\n  solution: [platform]\n"
			So(os.WriteFile(path, []byte(doc), 0o600), ShouldBeNil)

			lex, err := lexicon.LoadFile(path)

			Convey("Then the set is built and keeps the built-in fillers", func() {
				So(err, ShouldBeNil)
				So(len(lex.Categories()), ShouldEqual, 2)
				So(lex.IsPositive("pain"), ShouldBeTrue)
				So(lex.IsFiller("um"), ShouldBeTrue)
			})
		})

		Convey("When the file is malformed", func() {
			path := filepath.Join(dir, "bad.yaml")
			So(os.WriteFile(path, []byte("categories: [oops"), 0o600), ShouldBeNil)
			_, err := lexicon.LoadFile(path)
			So(errors.Is(err, lexicon.ErrLoadLexicon), ShouldBeTrue)
		})

		Convey("When the file does not exist", func() {
			_, err := lexicon.LoadFile(filepath.Join(dir, "missing.yaml"))
			So(errors.Is(err, lexicon.ErrLoadLexicon), ShouldBeTrue)
		})
	})
}
