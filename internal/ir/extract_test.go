package ir

import "testing"

const loopIR = `; ModuleID = 'loop'
@counter = global i32 0

define i32 @main() {
entry:
  %i = alloca i32
  store i32 0, i32* %i
  br label %loop

loop:
  %val = load i32, i32* %i
  %cmp = icmp slt i32 %val, 10
  br i1 %cmp, label %body, label %done

body:
  %next = add nsw i32 %val, 1
  store i32 %next, i32* %i
  br label %loop

done:
  ret i32 0
}
`

const recursiveIR = `define i64 @fib(i32 %n) {
entry:
  %cmp = icmp slt i32 %n, 2
  br i1 %cmp, label %base, label %rec

base:
  ret i64 1

rec:
  %a = call i64 @fib(i32 %n)
  %b = call i64 @fib(i32 %n)
  %sum = add nsw i64 %a, %b
  ret i64 %sum
}
`

func TestExtract_LoopProgram(t *testing.T) {
	fv, pot := Extract(loopIR)

	if fv.LoopCount != 2 {
		t.Errorf("expected loop count 2, got %d", fv.LoopCount)
	}
	if fv.FuncCalls != 0 {
		t.Errorf("expected 0 calls, got %d", fv.FuncCalls)
	}
	if fv.InstrCount != 10 {
		t.Errorf("expected 10 instructions, got %d", fv.InstrCount)
	}
	if !fv.HasBranch {
		t.Error("expected HasBranch for br i1")
	}
	if !fv.UsesMemory {
		t.Error("expected UsesMemory for alloca/load/store")
	}
	if !fv.UsesGlobal {
		t.Error("expected UsesGlobal for global definition")
	}

	if pot[PotentialLoopUnroll] != 1 {
		t.Errorf("expected unroll potential 1, got %d", pot[PotentialLoopUnroll])
	}
	if pot[PotentialInlining] != 1 {
		t.Errorf("expected inlining potential 1 (small body), got %d", pot[PotentialInlining])
	}
	if pot[PotentialMem2Reg] != 1 {
		t.Errorf("expected mem2reg potential 1, got %d", pot[PotentialMem2Reg])
	}
	if pot[PotentialDeadCode] != 0 {
		t.Errorf("expected no dead assignments, got %d", pot[PotentialDeadCode])
	}
}

func TestExtract_RecursionWeightsCalls(t *testing.T) {
	fv, _ := Extract(recursiveIR)

	// One self-recursive function amplifies the two static call sites.
	if fv.FuncCalls != 8 {
		t.Errorf("expected weighted call count 8, got %d", fv.FuncCalls)
	}
	if fv.LoopCount != 0 {
		t.Errorf("expected no loops, got %d", fv.LoopCount)
	}
}

func TestExtract_RecursionWithLoopFloorsInstrCount(t *testing.T) {
	ir := recursiveIR + `
define void @spin() {
entry:
  br label %again

again:
  br label %again
}
`
	fv, _ := Extract(ir)

	if fv.LoopCount == 0 {
		t.Fatal("expected loops to be detected")
	}
	if fv.InstrCount < 50 {
		t.Errorf("expected instruction floor of 50 with recursion and loops, got %d", fv.InstrCount)
	}
}

func TestExtract_DeadAssignment(t *testing.T) {
	ir := `define i32 @main() {
entry:
  %used = add i32 0, 1
  %unused = mul i32 %used, 3
  ret i32 %used
}
`
	_, pot := Extract(ir)

	if pot[PotentialDeadCode] != 1 {
		t.Errorf("expected 1 dead assignment, got %d", pot[PotentialDeadCode])
	}
}

func TestExtract_EmptyInput(t *testing.T) {
	fv, pot := Extract("")

	if !fv.IsZero() {
		t.Errorf("expected zero vector for empty input, got %+v", fv)
	}
	for name, score := range pot {
		if score != 0 {
			t.Errorf("expected zero potential for %s, got %d", name, score)
		}
	}
}

func TestFeatureVector_Floats(t *testing.T) {
	fv := FeatureVector{
		LoopCount:  2,
		FuncCalls:  3,
		InstrCount: 40,
		HasBranch:  true,
		UsesMemory: false,
		UsesGlobal: true,
	}

	got := fv.Floats()
	want := [NumFeatures]float64{2, 3, 40, 1, 0, 1}
	if got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
}
