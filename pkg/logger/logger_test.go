package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestLoggerOutput(t *testing.T) {
	Convey("Given a logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(InitWithWriter(&buf), ShouldBeNil)
		ctx := context.Background()

		Convey("When logging at info level", func() {
			Get().Info(ctx, "pitch started",
				String("pitch", "p-1"),
				Float64("level", 12.5),
				Bool("warned", false),
				Duration("grace", 4*time.Second),
			)

			Convey("Then the record carries message, fields and source", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "pitch started")
				So(out, ShouldContainSubstring, "pitch=p-1")
				So(out, ShouldContainSubstring, "level=12.5")
				So(out, ShouldContainSubstring, "grace=4s")
				So(out, ShouldContainSubstring, "source=")
				So(out, ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When logging below the configured level", func() {
			So(SetLevelString("warn"), ShouldBeNil)
			defer func() { _ = SetLevelString("info") }()
			Get().Debug(ctx, "tick")
			Get().Info(ctx, "noise")
			Get().Warn(ctx, "attention high", Error(errors.New("boom")))

			Convey("Then only the warning is written", func() {
				out := buf.String()
				So(out, ShouldNotContainSubstring, "tick")
				So(out, ShouldNotContainSubstring, "noise")
				So(out, ShouldContainSubstring, "attention high")
				So(out, ShouldContainSubstring, "error=boom")
			})
		})

		Convey("When using named and enriched loggers", func() {
			Named("runner").With(String("game", "g-1")).Info(ctx, "loop started")

			Convey("Then the group and bound fields are present", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "runner.game=g-1")
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		So(Init(), ShouldBeNil)
		for _, lvl := range []string{"debug", "INFO", "", "warning", "error"} {
			So(SetLevelString(lvl), ShouldBeNil)
		}
		So(SetLevelString("verbose"), ShouldNotBeNil)
		_ = SetLevelString("info")
	})
}
