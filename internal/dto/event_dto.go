package dto

// EventPayload is the create/update body for a calendar event.
type EventPayload struct {
	Date        Field[string] `json:"data"`
	Title       Field[string] `json:"titulo"`
	Description Field[string] `json:"descricao"`
	Color       Field[string] `json:"cor"`
	ClientID    Field[uint]   `json:"clienteId"`
	Completed   Field[bool]   `json:"completed"`
}
