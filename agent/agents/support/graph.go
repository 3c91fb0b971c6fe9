package support

import (
	"context"

	"github.com/cloudwego/eino/compose"

	nodex "github.com/shopco/support-agent/agent/nodes"
)

const (
	nodeValidateRequest   = "validate_request"
	nodeLoadOrCreateState = "load_or_create_state"
	nodeRunDialogue       = "run_dialogue"
	nodeSaveState         = "save_state"
	nodeFinalizeReply     = "finalize_reply"
)

// compileHandleMessageGraph builds the per-turn pipeline:
//
//	START -> validate_request -> load_or_create_state -> run_dialogue
//	      -> save_state -> finalize_reply -> END
func (a *Agent) compileHandleMessageGraph(ctx context.Context) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	g := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := g.AddLambdaNode(nodeValidateRequest, compose.InvokableLambda(
		func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in, a.now)
		},
	)); err != nil {
		return nil, err
	}

	if err := g.AddLambdaNode(nodeLoadOrCreateState, compose.InvokableLambda(
		func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.LoadOrCreateState(ctx, in, a.store)
		},
	)); err != nil {
		return nil, err
	}

	if err := g.AddLambdaNode(nodeRunDialogue, compose.InvokableLambda(
		func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RunDialogue(ctx, in, a.toolModel, a.plainModel, a.tools, a.dialogue)
		},
	)); err != nil {
		return nil, err
	}

	if err := g.AddLambdaNode(nodeSaveState, compose.InvokableLambda(
		func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.SaveState(ctx, in, a.store)
		},
	)); err != nil {
		return nil, err
	}

	if err := g.AddLambdaNode(nodeFinalizeReply, compose.InvokableLambda(
		func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.FinalizeReply(in)
		},
	)); err != nil {
		return nil, err
	}

	if err := g.AddEdge(compose.START, nodeValidateRequest); err != nil {
		return nil, err
	}
	if err := g.AddEdge(nodeValidateRequest, nodeLoadOrCreateState); err != nil {
		return nil, err
	}
	if err := g.AddEdge(nodeLoadOrCreateState, nodeRunDialogue); err != nil {
		return nil, err
	}
	if err := g.AddEdge(nodeRunDialogue, nodeSaveState); err != nil {
		return nil, err
	}
	if err := g.AddEdge(nodeSaveState, nodeFinalizeReply); err != nil {
		return nil, err
	}
	if err := g.AddEdge(nodeFinalizeReply, compose.END); err != nil {
		return nil, err
	}

	return g.Compile(ctx, compose.WithGraphName("support_handle_message"))
}
