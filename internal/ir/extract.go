// Package ir extracts prediction features from LLVM IR text.
//
// Everything here is deliberately syntactic: pattern counts over the raw
// text, no control-flow graph, no dataflow. The scores are heuristics
// that approximate runtime behavior well enough for tier prediction.
package ir

import (
	"regexp"
	"strings"
)

var (
	reBrLabel    = regexp.MustCompile(`br label %`)
	reCondBack   = regexp.MustCompile(`br .+, label %\S+ to label %\S+`)
	reCall       = regexp.MustCompile(`call `)
	reDefine     = regexp.MustCompile(`define\s+.*?\s+@(\w+)\(`)
	reCondBranch = regexp.MustCompile(`br i1|switch`)
	reMemOp      = regexp.MustCompile(`alloca |load |store |malloc|free|call.*mem`)
	reArrayAddr  = regexp.MustCompile(`getelementptr|alloca .+x`)
	reGlobalDef  = regexp.MustCompile(`@\w+\s*=`)
	reGlobalLoad = regexp.MustCompile(`load .+@\w+`)
	reConstCmp   = regexp.MustCompile(`icmp .+ %\w+, \d+`)
	reIncrement  = regexp.MustCompile(`add .+ %\w+, 1`)
	reAlloca     = regexp.MustCompile(`alloca `)
	reLoad       = regexp.MustCompile(`load `)
	reStore      = regexp.MustCompile(`store `)
	reConstOp    = regexp.MustCompile(`(add|sub|mul|div|shl|lshr|ashr|and|or|xor) .+, \d+`)
	reAssign     = regexp.MustCompile(`%(\w+) =`)
)

// recursionCallWeight amplifies the static call count of self-recursive
// functions: one recursive call site expands into many dynamic calls.
const recursionCallWeight = 8

// recursiveLoopInstrFloor is the instruction-count floor applied when
// recursion and a loop are both present. The static count badly
// underestimates the dynamic work in that combination.
const recursiveLoopInstrFloor = 50

// inlineBodyThreshold is the body size below which a function counts as
// an inlining candidate.
const inlineBodyThreshold = 20

// Extract derives a FeatureVector and advisory Potentials from IR text.
// It never fails: any internal panic yields the zero vector and nil
// potentials, which callers must interpret as "unknown".
func Extract(irText string) (fv FeatureVector, pot Potentials) {
	defer func() {
		if r := recover(); r != nil {
			fv = FeatureVector{}
			pot = nil
		}
	}()

	// Loop proxy: backward jumps to labels, not a CFG analysis.
	loopCount := max(
		len(reBrLabel.FindAllString(irText, -1)),
		len(reCondBack.FindAllString(irText, -1)),
	)

	funcDefs := functionNames(irText)
	recursive := countRecursive(irText, funcDefs)

	funcCalls := len(reCall.FindAllString(irText, -1))
	if recursive > 0 {
		funcCalls = max(funcCalls, recursionCallWeight*recursive)
	}

	instrCount := countInstructions(irText)
	if recursive > 0 && loopCount > 0 {
		instrCount = max(instrCount, recursiveLoopInstrFloor)
	}

	fv = FeatureVector{
		LoopCount:  loopCount,
		FuncCalls:  funcCalls,
		InstrCount: instrCount,
		HasBranch:  reCondBranch.MatchString(irText),
		UsesMemory: reMemOp.MatchString(irText) || reArrayAddr.MatchString(irText),
		UsesGlobal: reGlobalDef.MatchString(irText) || reGlobalLoad.MatchString(irText),
	}

	pot = Potentials{
		PotentialLoopUnroll: unrollPotential(irText, loopCount),
		PotentialInlining:   inliningPotential(irText, funcDefs),
		PotentialMem2Reg:    mem2regPotential(irText),
		PotentialConstFold:  len(reConstOp.FindAllString(irText, -1)),
		PotentialDeadCode:   deadAssignments(irText),
	}

	return fv, pot
}

// functionNames returns the names of all defined functions, in order.
func functionNames(irText string) []string {
	matches := reDefine.FindAllStringSubmatch(irText, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}

// countRecursive counts defined functions that call themselves.
func countRecursive(irText string, names []string) int {
	n := 0
	for _, name := range names {
		selfCall := regexp.MustCompile(`call .+@` + regexp.QuoteMeta(name) + `\(`)
		if selfCall.MatchString(irText) {
			n++
		}
	}
	return n
}

// countInstructions counts non-comment statement lines: indented lines
// whose content does not start with ';'.
func countInstructions(text string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" || len(trimmed) == len(line) {
			continue // blank or not indented
		}
		if strings.HasPrefix(trimmed, ";") {
			continue
		}
		n++
	}
	return n
}

// unrollPotential estimates loop-unroll candidates: loops with a
// constant-bound comparison and a simple increment-by-one.
func unrollPotential(irText string, loopCount int) int {
	if loopCount == 0 {
		return 0
	}
	constCmps := len(reConstCmp.FindAllString(irText, -1))
	increments := len(reIncrement.FindAllString(irText, -1))
	if constCmps == 0 || increments == 0 {
		return 0
	}
	return min(constCmps, increments)
}

// inliningPotential counts functions whose body holds fewer than
// inlineBodyThreshold statement lines.
func inliningPotential(irText string, names []string) int {
	small := 0
	for _, name := range names {
		body := regexp.MustCompile(`(?s)define[^@]+@` + regexp.QuoteMeta(name) + `[^{]+\{(.*?)\}`)
		m := body.FindStringSubmatch(irText)
		if m == nil {
			continue
		}
		if countInstructions(m[1]) < inlineBodyThreshold {
			small++
		}
	}
	return small
}

// mem2regPotential estimates stack slots promotable to registers.
func mem2regPotential(irText string) int {
	allocas := len(reAlloca.FindAllString(irText, -1))
	loads := len(reLoad.FindAllString(irText, -1))
	stores := len(reStore.FindAllString(irText, -1))
	return min(allocas, loads+stores)
}

// deadAssignments counts assigned names with no textual reference after
// their first definition. This is lexical, not flow-sensitive: names
// shadowed across branches can be over-counted. Known limitation, kept
// as-is.
func deadAssignments(irText string) int {
	dead := 0
	for _, m := range reAssign.FindAllStringSubmatch(irText, -1) {
		name := m[1]
		def := "%" + name + " ="
		idx := strings.Index(irText, def)
		if idx < 0 {
			continue
		}
		rest := irText[idx+len(def):]
		used := regexp.MustCompile(`[^%]%` + regexp.QuoteMeta(name) + `[^0-9a-zA-Z_]`)
		if !used.MatchString(rest) {
			dead++
		}
	}
	return dead
}
