package types

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Compile-time assertions that Command round-trips through a JSONB column.
// Scan is on the pointer receiver; Value is on the value receiver.
var (
	_ sql.Scanner   = (*Command)(nil)
	_ driver.Valuer = Command{}
)

// Command is the polymorphic payload of an Action, stored as a JSONB
// tagged union:
//
//	{"tag": "followup", "data": {"contact_id": "...", "note": "..."}}
//
// The scheduler core treats the envelope as opaque apart from the tag,
// which it uses to dispatch effect execution. Adding a new command kind
// means adding a tag constant, a typed body, and a handler; the scan,
// complete, and reschedule logic never changes.
type Command struct {
	Tag  CommandTag      `json:"tag"`
	Data json.RawMessage `json:"data,omitempty"`
}

// CreateFollowUpCommand is the body of a CommandFollowUp command: register
// a follow-up task for the given contact with the given note.
type CreateFollowUpCommand struct {
	ContactID string `json:"contact_id"`
	Note      string `json:"note"`
}

// NewFollowUpCommand builds a followup Command envelope.
func NewFollowUpCommand(contactID, note string) (Command, error) {
	data, err := json.Marshal(CreateFollowUpCommand{
		ContactID: contactID,
		Note:      note,
	})
	if err != nil {
		return Command{}, fmt.Errorf("command: failed to encode followup body: %w", err)
	}
	return Command{Tag: CommandFollowUp, Data: data}, nil
}

// FollowUp decodes the command body as a CreateFollowUpCommand. Returns an
// error if the envelope carries a different tag or a malformed body.
func (c Command) FollowUp() (CreateFollowUpCommand, error) {
	if c.Tag != CommandFollowUp {
		return CreateFollowUpCommand{}, fmt.Errorf("command: tag %q is not %q", c.Tag, CommandFollowUp)
	}
	var body CreateFollowUpCommand
	if err := json.Unmarshal(c.Data, &body); err != nil {
		return CreateFollowUpCommand{}, fmt.Errorf("command: malformed followup body: %w", err)
	}
	return body, nil
}

// Scan implements the sql.Scanner interface for reading JSONB from the
// database. Handles []byte and string representations.
func (c *Command) Scan(value interface{}) error {
	if value == nil {
		*c = Command{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("command: unsupported scan type %T", value)
	}
	return json.Unmarshal(data, c)
}

// Value implements the driver.Valuer interface for writing JSONB to the
// database.
func (c Command) Value() (driver.Value, error) {
	return json.Marshal(c)
}
