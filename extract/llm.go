package extract

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	"github.com/eino-contrib/jsonschema"

	"github.com/hrtools/onboardbot/types"
)

const (
	extractToolName        = "record_employee"
	extractToolDescription = "Record the structured employee fields found in the input text."
)

const extractSystemPrompt = `You are a data extraction assistant for an employee onboarding system.

Extract the employee's name, phone, designation and salary from the input text. The input is usually one row of a spreadsheet rendered as "header: value" pairs, but may be free-form text.

Rules:
- Use only information present in the input. Never invent values.
- Leave a field empty (or 0 for salary) when the input does not contain it.
- Salary must be a plain number: strip currency symbols and thousands separators.

The output must match this JSON schema:
%s

Call the '%s' tool with the result.`

// ToolBased extracts a record with a single forced tool call against the
// chat model.
type ToolBased struct {
	chatModel  model.ToolCallingChatModel
	toolInfo   *schema.ToolInfo
	schemaJSON string
}

func NewToolBased(chatModel model.ToolCallingChatModel) (*ToolBased, error) {
	toolInfo, err := utils.GoStruct2ToolInfo[types.EmployeeRecord](extractToolName, extractToolDescription)
	if err != nil {
		return nil, fmt.Errorf("convert tool info failed: %w", err)
	}
	schemaJSON, err := recordSchemaJSON()
	if err != nil {
		return nil, err
	}
	return &ToolBased{
		chatModel:  chatModel,
		toolInfo:   toolInfo,
		schemaJSON: schemaJSON,
	}, nil
}

func (e *ToolBased) Extract(ctx context.Context, text string) (types.EmployeeRecord, error) {
	messages := []*schema.Message{
		schema.SystemMessage(fmt.Sprintf(extractSystemPrompt, e.schemaJSON, extractToolName)),
		schema.UserMessage(text),
	}
	response, err := e.chatModel.Generate(ctx, messages,
		model.WithTools([]*schema.ToolInfo{e.toolInfo}),
		model.WithToolChoice(schema.ToolChoiceForced, e.toolInfo.Name),
	)
	if err != nil {
		return types.EmployeeRecord{}, fmt.Errorf("call model failed: %w", err)
	}
	if len(response.ToolCalls) == 0 {
		return types.EmployeeRecord{}, fmt.Errorf("no ToolCall found in model response: %s", response.Content)
	}
	var rec types.EmployeeRecord
	if err := sonic.UnmarshalString(response.ToolCalls[0].Function.Arguments, &rec); err != nil {
		return types.EmployeeRecord{}, fmt.Errorf("parse ToolCall arguments failed: %w", err)
	}
	return rec, nil
}

func recordSchemaJSON() (string, error) {
	s := jsonschema.Reflect(&types.EmployeeRecord{})
	s.Title = "Employee Record"
	s.Description = "One employee's onboarding details: name, phone, designation and salary."
	data, err := sonic.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal record schema: %w", err)
	}
	return string(data), nil
}
