package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	nodex "github.com/tanpawarit/agentic-bank/agent/nodes"
)

type stateNode = func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error)

type route func(in *nodex.GraphState) (string, error)

func (o *Orchestrator) compileHandleTurnGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.TurnResponse], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.TurnResponse]()
	degradable := o.agents.Fallback() != nil

	if err := graph.AddLambdaNode(nodex.NodeValidateRequest,
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in, o.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeValidateRequest, err)
	}

	stateNodes := []struct {
		name string
		run  stateNode
	}{
		{nodex.NodeLoadOrCreateState, func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.LoadOrCreateState(ctx, in, o.store)
		}},
		{nodex.NodeDetectCommand, func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.DetectCommand(ctx, in, o.store, o.audit)
		}},
		{nodex.NodePlanTurn, func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.PlanTurn(ctx, in, o.agents.Extractor(), degradable, o.audit)
		}},
		{nodex.NodeReviewPlan, func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ReviewPlan(ctx, in, o.agents.Reviewer(), degradable, o.audit)
		}},
		{nodex.NodeExecutePlan, func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ExecutePlan(ctx, in, o.store, o.agents.Executor(), degradable, o.audit)
		}},
		{nodex.NodeReviewOutcome, func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ReviewOutcome(ctx, in, o.agents.Reviewer(), degradable, o.audit)
		}},
		{nodex.NodeRespondCancelled, func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RespondCancelled(in)
		}},
		{nodex.NodeRespondClarification, func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RespondClarification(ctx, in, o.store, o.agents.Renderer(), o.audit)
		}},
		{nodex.NodeRespondFinal, func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RespondFinal(ctx, in, o.store, o.agents.Renderer(), o.audit)
		}},
		{nodex.NodeDegrade, func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.Degrade(ctx, in, o.store, o.agents.Fallback(), o.audit)
		}},
	}
	for _, n := range stateNodes {
		if err := graph.AddLambdaNode(n.name, compose.InvokableLambda(n.run)); err != nil {
			return nil, fmt.Errorf("add node %s: %w", n.name, err)
		}
	}

	if err := graph.AddLambdaNode(nodex.NodeFinalizeReply,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.TurnResponse, error) {
			return nodex.FinalizeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeFinalizeReply, err)
	}

	edges := [][2]string{
		{compose.START, nodex.NodeValidateRequest},
		{nodex.NodeValidateRequest, nodex.NodeLoadOrCreateState},
		{nodex.NodeLoadOrCreateState, nodex.NodeDetectCommand},
		{nodex.NodeRespondCancelled, nodex.NodeFinalizeReply},
		{nodex.NodeDegrade, nodex.NodeFinalizeReply},
		{nodex.NodeFinalizeReply, compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	branches := []struct {
		from    string
		choose  route
		targets []string
	}{
		{nodex.NodeDetectCommand, nodex.RouteAfterCommand, []string{nodex.NodeRespondCancelled, nodex.NodePlanTurn}},
		{nodex.NodePlanTurn, nodex.RouteAfterPlan, []string{nodex.NodeDegrade, nodex.NodeReviewPlan}},
		{nodex.NodeReviewPlan, nodex.RouteAfterPlanReview, []string{nodex.NodeDegrade, nodex.NodeRespondClarification, nodex.NodeExecutePlan}},
		{nodex.NodeExecutePlan, nodex.RouteAfterExecution, []string{nodex.NodeDegrade, nodex.NodeReviewOutcome}},
		{nodex.NodeReviewOutcome, nodex.RouteAfterOutcomeReview, []string{nodex.NodeDegrade, nodex.NodeRespondFinal}},
		{nodex.NodeRespondClarification, nodex.RouteAfterReply, []string{nodex.NodeDegrade, nodex.NodeFinalizeReply}},
		{nodex.NodeRespondFinal, nodex.RouteAfterReply, []string{nodex.NodeDegrade, nodex.NodeFinalizeReply}},
	}
	for _, b := range branches {
		choose := b.choose
		targets := make(map[string]bool, len(b.targets))
		for _, target := range b.targets {
			targets[target] = true
		}
		branch := compose.NewGraphBranch(
			func(ctx context.Context, in *nodex.GraphState) (string, error) {
				return choose(in)
			},
			targets,
		)
		if err := graph.AddBranch(b.from, branch); err != nil {
			return nil, fmt.Errorf("add branch after %s: %w", b.from, err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.handle_turn"))
	if err != nil {
		return nil, fmt.Errorf("compile orchestrator graph: %w", err)
	}
	return runner, nil
}
