package logging

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestConfigureSetsLevel(t *testing.T) {
	Configure(true)
	if logrus.GetLevel() != logrus.DebugLevel {
		t.Fatalf("expected verbose Configure to set DebugLevel, got %v", logrus.GetLevel())
	}

	Configure(false)
	if logrus.GetLevel() != logrus.InfoLevel {
		t.Fatalf("expected non-verbose Configure to set InfoLevel, got %v", logrus.GetLevel())
	}
}

func TestFromContextReturnsStandardLoggerWhenUnset(t *testing.T) {
	e := FromContext(context.Background())
	if e == nil {
		t.Fatal("expected a non-nil fallback entry")
	}
}

func TestWithContextRoundTrips(t *testing.T) {
	entry := ForModule("mymodule")
	ctx := WithContext(context.Background(), entry)

	got := FromContext(ctx)
	if got.Data["module"] != "mymodule" {
		t.Fatalf("expected the attached entry's module field to survive the round trip, got %v", got.Data["module"])
	}
}

func TestForModuleSetsModuleField(t *testing.T) {
	e := ForModule("foo")
	if e.Data["module"] != "foo" {
		t.Fatalf("expected module field foo, got %v", e.Data["module"])
	}
}
