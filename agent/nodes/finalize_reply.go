package nodes

import (
	"fmt"
	"strings"

	contractx "github.com/shopco/support-agent/agent/contract"
)

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	reply := strings.TrimSpace(in.Reply)
	if reply == "" {
		return GraphOutput{}, fmt.Errorf("%w: model returned an empty reply", contractx.ErrValidation)
	}
	return GraphOutput{Reply: reply}, nil
}
