package journal

import (
	entschema "entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	turnsTableName = "turns"

	columnID             = "id"
	columnConversationID = "conversation_id"
	columnPrompt         = "prompt"
	columnContent        = "content"
	columnModel          = "model"
	columnCreatedAt      = "created_at"
)

var (
	turnsColumns = []*entschema.Column{
		{Name: columnID, Type: field.TypeString, Unique: true},
		{Name: columnConversationID, Type: field.TypeString},
		{Name: columnPrompt, Type: field.TypeString, Size: 2147483647},
		{Name: columnContent, Type: field.TypeString, Size: 2147483647},
		{Name: columnModel, Type: field.TypeString},
		{Name: columnCreatedAt, Type: field.TypeTime},
	}

	// turnsTable holds one row per completed chat turn.
	turnsTable = &entschema.Table{
		Name:       turnsTableName,
		Columns:    turnsColumns,
		PrimaryKey: []*entschema.Column{turnsColumns[0]},
		Indexes: []*entschema.Index{
			{
				Name:    "turn_conversation_id",
				Unique:  false,
				Columns: []*entschema.Column{turnsColumns[1]},
			},
			{
				Name:    "turn_created_at",
				Unique:  false,
				Columns: []*entschema.Column{turnsColumns[5]},
			},
		},
	}

	tables = []*entschema.Table{turnsTable}

	selectColumns = []string{
		columnID,
		columnConversationID,
		columnPrompt,
		columnContent,
		columnModel,
		columnCreatedAt,
	}
)
