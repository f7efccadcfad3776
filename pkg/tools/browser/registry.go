package browser

import (
	"github.com/entrhq/webpilot/pkg/agent/tools"
	"github.com/entrhq/webpilot/pkg/logging"
	"github.com/entrhq/webpilot/pkg/page"
)

// RegisterAll registers the full browser tool set, plus the completion
// tool, against the given dispatcher. Registration order is the order the
// tools are advertised to the model. The logger may be nil.
func RegisterAll(registry *tools.Registry, dispatcher *page.Dispatcher, log *logging.Logger) {
	registry.Register(NewNavigateTool(dispatcher))
	registry.Register(NewClickTool(dispatcher))
	registry.Register(NewInputTextTool(dispatcher))
	registry.Register(NewGoBackTool(dispatcher))
	registry.Register(NewExtractLinkTool(dispatcher))
	registry.Register(tools.NewDone().WithLogger(log))
}
