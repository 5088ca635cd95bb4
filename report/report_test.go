package report

import "testing"

func TestErrorCounting(t *testing.T) {
	cs := &CaptureSink{}
	old := SetSink(cs)
	defer SetSink(old)
	Init(LogLevelWarn)

	if AnyErrors() {
		t.Fatal("fresh reporter reports errors")
	}

	pos := NewPosition("a.sp", 3, 7)
	Error(pos, "bad thing %d", 1)
	Warning(pos, "iffy thing")
	Error(nil, "another bad thing")

	if Errors() != 2 {
		t.Errorf("Errors() = %d; want 2", Errors())
	}
	if !AnyErrors() {
		t.Error("AnyErrors() false after reported errors")
	}
	if len(cs.ErrorMessages()) != 2 || len(cs.Warnings()) != 1 {
		t.Errorf("captured %d errors, %d warnings; want 2, 1", len(cs.ErrorMessages()), len(cs.Warnings()))
	}
}

func TestCatchErrorsReportsRaised(t *testing.T) {
	cs := &CaptureSink{}
	old := SetSink(cs)
	defer SetSink(old)
	Init(LogLevelWarn)

	func() {
		defer CatchErrors()
		panic(Raise(NewPosition("a.sp", 1, 1), "deep failure in %s", "walk"))
	}()

	if Errors() != 1 {
		t.Fatalf("Errors() = %d; want 1 from recovered raise", Errors())
	}
	if cs.Diags[0].Message != "deep failure in walk" {
		t.Errorf("captured message = %q", cs.Diags[0].Message)
	}
}

func TestPositionString(t *testing.T) {
	pos := NewPosition("kernel.sp", 12, 5)
	if got := pos.String(); got != "kernel.sp:12:5" {
		t.Errorf("String() = %q; want kernel.sp:12:5", got)
	}
}
