package graph

import "github.com/dukex/operion-studio/pkg/models"

// FindCycles reports every group of steps that can reach itself through next
// edges: strongly connected components with more than one step, plus self-loops.
// Connect never calls it; cycles are a valid construct (e.g. around a loop step)
// and callers decide whether to warn about them.
func FindCycles(def models.WorkflowDefinition) [][]string {
	t := &tarjan{
		def:     def,
		index:   make(map[string]int, len(def.Steps)),
		low:     make(map[string]int, len(def.Steps)),
		onStack: make(map[string]bool, len(def.Steps)),
	}

	for _, step := range def.Steps {
		if _, visited := t.index[step.ID]; !visited {
			t.visit(step.ID)
		}
	}

	return t.cycles
}

type tarjan struct {
	def     models.WorkflowDefinition
	counter int
	index   map[string]int
	low     map[string]int
	onStack map[string]bool
	stack   []string
	cycles  [][]string
}

func (t *tarjan) visit(id string) {
	t.index[id] = t.counter
	t.low[id] = t.counter
	t.counter++
	t.stack = append(t.stack, id)
	t.onStack[id] = true

	step, _ := t.def.StepByID(id)
	selfLoop := false

	for _, next := range step.Next {
		if next == id {
			selfLoop = true
		}

		if !t.def.HasStep(next) {
			continue
		}

		if _, visited := t.index[next]; !visited {
			t.visit(next)
			t.low[id] = min(t.low[id], t.low[next])
		} else if t.onStack[next] {
			t.low[id] = min(t.low[id], t.index[next])
		}
	}

	if t.low[id] != t.index[id] {
		return
	}

	var component []string

	for {
		top := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		t.onStack[top] = false
		component = append(component, top)

		if top == id {
			break
		}
	}

	if len(component) > 1 || selfLoop {
		t.cycles = append(t.cycles, component)
	}
}
