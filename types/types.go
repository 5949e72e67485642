package types

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Kind tells the rendering transport which widget to draw for a message.
// It carries no routing meaning: the router only ever reads content.
type Kind string

const (
	KindPlain  Kind = "plain"
	KindChoice Kind = "choice"
	KindTable  Kind = "table"
)

type Message struct {
	Role    Role             `json:"role"`
	Content string           `json:"content"`
	Kind    Kind             `json:"kind"`
	Options []string         `json:"options,omitempty"`
	Payload []EmployeeRecord `json:"payload,omitempty"`
}

func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content, Kind: KindPlain}
}

func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content, Kind: KindPlain}
}

func ChoiceMessage(content string, options ...string) Message {
	return Message{Role: RoleAssistant, Content: content, Kind: KindChoice, Options: options}
}

// TableMessage carries the records both as structured payload (for grid
// renderers) and as a markdown table appended to the content (for plain-text
// transports).
func TableMessage(content string, records []EmployeeRecord) Message {
	payload := make([]EmployeeRecord, len(records))
	copy(payload, records)
	if table := FormatRecordTable(payload); table != "" {
		if content != "" {
			content += "\n\n"
		}
		content += table
	}
	return Message{Role: RoleAssistant, Content: content, Kind: KindTable, Payload: payload}
}

type EmployeeRecord struct {
	Name        string  `json:"name" jsonschema:"description=Full name of the employee"`
	Phone       string  `json:"phone" jsonschema:"description=Contact phone number with 10 to 15 digits"`
	Designation string  `json:"designation" jsonschema:"description=Job title or role"`
	Salary      float64 `json:"salary" jsonschema:"description=Salary as a plain number without currency symbols"`
}

// SentinelExtractionError marks a record the extraction service could not
// determine. Sentinel records stay visible in the batch for user correction
// instead of being dropped.
const SentinelExtractionError = "Extraction Error"

// SentinelUnknown fills fields that have no usable value.
const SentinelUnknown = "N/A"

func SentinelRecord() EmployeeRecord {
	return EmployeeRecord{
		Name:        SentinelExtractionError,
		Phone:       SentinelUnknown,
		Designation: SentinelUnknown,
	}
}

// Complete reports whether all four fields are populated. Sentinel values
// count as populated: an erroring record is complete but flagged.
func (r EmployeeRecord) Complete() bool {
	return r.Name != "" && r.Phone != "" && r.Designation != "" && r.Salary != 0
}
