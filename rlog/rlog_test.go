package rlog

import "testing"

func TestDefaultLoggerIsUsableBeforeInit(t *testing.T) {
	// Must not panic even though Init has never been called in this test binary.
	L.Info("message logged before Init")
}

func TestInitDevelopmentReplacesLogger(t *testing.T) {
	prev := L
	if err := Init(LevelDevelopment); err != nil {
		t.Fatalf("Init(LevelDevelopment) returned error: %v", err)
	}
	if L == prev {
		t.Error("Init should replace the package-level logger")
	}
	L.Info("development logger message")
}

func TestInitProductionReplacesLogger(t *testing.T) {
	prev := L
	if err := Init(LevelProduction); err != nil {
		t.Fatalf("Init(LevelProduction) returned error: %v", err)
	}
	if L == prev {
		t.Error("Init should replace the package-level logger")
	}
	L.Info("production logger message")
}

func TestSyncDoesNotPanic(t *testing.T) {
	Init(LevelDevelopment)
	_ = Sync()
}
