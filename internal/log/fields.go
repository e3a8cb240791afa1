package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldTransactionID = "transaction_id"
	FieldType          = "type"
	FieldAmount        = "amount"
	FieldCurrency      = "currency"
	FieldCategory      = "category"
	FieldSource        = "source"
	FieldDate          = "date"
	FieldPath          = "path"
	FieldBackend       = "backend"
	FieldRateBase      = "rate_base"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentStorage = "storage"
	ComponentService = "service"
	ComponentRates   = "rates"
	ComponentAMQP    = "amqp"
	ComponentBackend = "backend"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpConvert  = "convert"
	OpFetch    = "fetch"
	OpValidate = "validate"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
