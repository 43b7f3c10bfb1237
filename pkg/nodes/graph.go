package nodes

import (
	"github.com/tarsy-transit/opsagent/pkg/graph"
	"github.com/tarsy-transit/opsagent/pkg/state"
)

// BuildGraph wires the node functions on d into the fixed pipeline graph
// (§2 data flow): parse_intent -> resolve_target -> decision_router ->
// (consequence_analyser -> confirm_gate) | wizard_engine | executor |
// suggestion_provider | selection_provider | offer_creation ->
// report_result, with "fallback" as the crash-barrier terminal.
func BuildGraph(d *Deps) (*graph.Graph, error) {
	b := graph.NewBuilder("parse_intent")

	b.AddNode("parse_intent", d.ParseIntent)
	b.AddNode("resolve_target", d.ResolveTarget)
	b.AddNode("decision_router", d.Route)
	b.AddNode("consequence_analyser", d.AnalyseConsequences)
	b.AddNode("confirm_gate", d.ConfirmGate)
	b.AddNode("wizard_engine", d.WizardEngine)
	b.AddNode("executor", d.Execute)
	b.AddNode("suggestion_provider", d.SuggestionProvider)
	b.AddNode("selection_provider", d.SelectionProvider)
	b.AddNode("offer_creation", d.OfferCreation)
	b.AddTerminal("report_result", d.ReportResult)
	b.AddTerminal("fallback", d.Fallback)

	onNextNode := func(target string) graph.Predicate {
		return func(s state.State) bool { return s.GetString("next_node") == target }
	}

	// parse_intent: wizard continuation bypasses resolution entirely.
	b.AddEdge("parse_intent", "wizard_engine", onNextNode("wizard_engine"))
	b.AddEdge("parse_intent", "resolve_target", nil)

	b.AddEdge("resolve_target", "decision_router", nil)

	// decision_router: every branch but the risky default sets next_node
	// explicitly; consequence_analyser is the unconditional fallthrough.
	b.AddEdge("decision_router", "report_result", onNextNode("report_result"))
	b.AddEdge("decision_router", "wizard_engine", onNextNode("wizard_engine"))
	b.AddEdge("decision_router", "suggestion_provider", onNextNode("suggestion_provider"))
	b.AddEdge("decision_router", "offer_creation", onNextNode("offer_creation"))
	b.AddEdge("decision_router", "selection_provider", onNextNode("selection_provider"))
	b.AddEdge("decision_router", "executor", onNextNode("executor"))
	b.AddEdge("decision_router", "consequence_analyser", nil)

	// consequence_analyser: confirm_gate when confirmation is required,
	// executor when it isn't, report_result on a resolution failure.
	b.AddEdge("consequence_analyser", "confirm_gate", onNextNode("confirm_gate"))
	b.AddEdge("consequence_analyser", "executor", onNextNode("executor"))
	b.AddEdge("consequence_analyser", "report_result", nil)

	b.AddEdge("confirm_gate", "report_result", nil)
	b.AddEdge("wizard_engine", "report_result", nil)
	b.AddEdge("executor", "report_result", nil)
	b.AddEdge("suggestion_provider", "report_result", nil)
	b.AddEdge("selection_provider", "report_result", nil)
	b.AddEdge("offer_creation", "report_result", nil)

	return b.Build()
}
