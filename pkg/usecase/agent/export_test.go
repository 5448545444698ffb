package agent

var (
	CleanJSONResponse = cleanJSONResponse
)

const (
	MsgClarifyIntent    = msgClarifyIntent
	MsgMissingCountry   = msgMissingCountry
	MsgMissingCustomer  = msgMissingCustomer
	MsgUnknownIntent    = msgUnknownIntent
	MsgInterpretFailure = msgInterpretFailure
	MsgProcessingError  = msgProcessingError
)
