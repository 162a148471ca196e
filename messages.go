package matlabmcp

// Message is the interface implemented by all conversation messages yielded
// by Ask and Client.Ask.
type Message interface {
	message() // marker method
}

// Compile-time verification that all message types implement Message.
var (
	_ Message = (*AssistantMessage)(nil)
	_ Message = (*ToolUseMessage)(nil)
	_ Message = (*ToolResultMessage)(nil)
	_ Message = (*ResultMessage)(nil)
)

// AssistantMessage is a text reply from the model.
type AssistantMessage struct {
	// Text is the assistant's message content.
	Text string
}

func (*AssistantMessage) message() {}

// ToolUseMessage reports that the model requested a tool call.
type ToolUseMessage struct {
	// ID is the provider-assigned tool call ID.
	ID string

	// Name is the qualified tool name (mcp__<server>__<tool>).
	Name string

	// Arguments is the decoded tool input.
	Arguments map[string]any
}

func (*ToolUseMessage) message() {}

// ToolResultMessage carries the outcome of a tool call back from the server.
type ToolResultMessage struct {
	// ToolUseID matches the ID of the originating ToolUseMessage.
	ToolUseID string

	// Name is the qualified tool name.
	Name string

	// Content is the tool output flattened to text.
	Content string

	// IsError reports whether the server flagged the result as an error.
	IsError bool
}

func (*ToolResultMessage) message() {}

// ResultMessage is the final message of a query. It is always yielded last.
type ResultMessage struct {
	// Text is the model's final answer.
	Text string

	// Turns is the number of completion requests the query took.
	Turns int

	// DurationMs is the wall-clock duration of the query in milliseconds.
	DurationMs int64

	// MaxTurnsExceeded reports that the query stopped because the turn
	// limit was reached before the model produced a final answer.
	MaxTurnsExceeded bool
}

func (*ResultMessage) message() {}
