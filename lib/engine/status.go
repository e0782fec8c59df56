package engine

import "fmt"

// Status is the signed code returned by every engine call:
// 0 is success, negative values are errors and positive values are warnings.
type Status int32

const StatusSuccess Status = 0

// Warnings
const (
	WrnColumnNull        Status = 1004 // column has no value
	WrnBufferTruncated   Status = 1006 // value did not fit in the buffer
	WrnSeekNotEqual      Status = 1039 // seek found a neighbour, not an equal key
	WrnColumnSetNull     Status = 1068 // column was set to null
	WrnColumnSingleValue Status = 1531 // enumeration returned the only value inline
)

// Errors
const (
	ErrInvalidGrbit         Status = -900
	ErrInvalidParameter     Status = -1003
	ErrTransTooDeep         Status = -1008
	ErrOutOfMemory          Status = -1011
	ErrRecordDeleted        Status = -1017
	ErrBufferTooSmall       Status = -1038
	ErrInvalidBookmark      Status = -1045
	ErrColumnInUse          Status = -1046
	ErrInvalidBufferSize    Status = -1047
	ErrNullKeyDisallowed    Status = -1053
	ErrNotInTransaction     Status = -1054
	ErrTooManyActiveUsers   Status = -1059
	ErrWriteConflict        Status = -1102
	ErrInvalidSesid         Status = -1104
	ErrTableDuplicate       Status = -1303
	ErrObjectNotFound       Status = -1305
	ErrInvalidTableID       Status = -1310
	ErrIndexDuplicate       Status = -1403
	ErrIndexNotFound        Status = -1404
	ErrIndexInvalidDef      Status = -1406
	ErrNullInvalid          Status = -1504
	ErrColumnNotFound       Status = -1507
	ErrColumnDuplicate      Status = -1508
	ErrInvalidColumnType    Status = -1511
	ErrBadColumnID          Status = -1517
	ErrBadItagSequence      Status = -1518
	ErrMultiValuedDuplicate Status = -1525
	ErrRecordNotFound       Status = -1601
	ErrNoCurrentRecord      Status = -1603
	ErrKeyDuplicate         Status = -1605
	ErrAlreadyPrepared      Status = -1607
	ErrKeyNotMade           Status = -1608
	ErrUpdateNotPrepared    Status = -1609
	ErrInvalidOperation     Status = -1906
)

// IsError reports whether the status is an error code.
func (s Status) IsError() bool { return s < 0 }

// IsWarning reports whether the status is a warning code.
func (s Status) IsWarning() bool { return s > 0 }

var statusNames = map[Status]string{
	StatusSuccess:           "JET_errSuccess",
	WrnColumnNull:           "JET_wrnColumnNull",
	WrnBufferTruncated:      "JET_wrnBufferTruncated",
	WrnSeekNotEqual:         "JET_wrnSeekNotEqual",
	WrnColumnSetNull:        "JET_wrnColumnSetNull",
	WrnColumnSingleValue:    "JET_wrnColumnSingleValue",
	ErrBufferTooSmall:       "JET_errBufferTooSmall",
	ErrColumnInUse:          "JET_errColumnInUse",
	ErrNullKeyDisallowed:    "JET_errNullKeyDisallowed",
	ErrMultiValuedDuplicate: "JET_errMultiValuedDuplicate",
	ErrInvalidGrbit:         "JET_errInvalidGrbit",
	ErrInvalidParameter:     "JET_errInvalidParameter",
	ErrTransTooDeep:         "JET_errTransTooDeep",
	ErrOutOfMemory:          "JET_errOutOfMemory",
	ErrRecordDeleted:        "JET_errRecordDeleted",
	ErrInvalidBookmark:      "JET_errInvalidBookmark",
	ErrInvalidBufferSize:    "JET_errInvalidBufferSize",
	ErrNotInTransaction:     "JET_errNotInTransaction",
	ErrTooManyActiveUsers:   "JET_errTooManyActiveUsers",
	ErrWriteConflict:        "JET_errWriteConflict",
	ErrInvalidSesid:         "JET_errInvalidSesid",
	ErrTableDuplicate:       "JET_errTableDuplicate",
	ErrObjectNotFound:       "JET_errObjectNotFound",
	ErrInvalidTableID:       "JET_errInvalidTableId",
	ErrIndexDuplicate:       "JET_errIndexDuplicate",
	ErrIndexNotFound:        "JET_errIndexNotFound",
	ErrIndexInvalidDef:      "JET_errIndexInvalidDef",
	ErrNullInvalid:          "JET_errNullInvalid",
	ErrColumnNotFound:       "JET_errColumnNotFound",
	ErrColumnDuplicate:      "JET_errColumnDuplicate",
	ErrInvalidColumnType:    "JET_errInvalidColumnType",
	ErrBadColumnID:          "JET_errBadColumnId",
	ErrBadItagSequence:      "JET_errBadItagSequence",
	ErrRecordNotFound:       "JET_errRecordNotFound",
	ErrNoCurrentRecord:      "JET_errNoCurrentRecord",
	ErrKeyDuplicate:         "JET_errKeyDuplicate",
	ErrAlreadyPrepared:      "JET_errAlreadyPrepared",
	ErrKeyNotMade:           "JET_errKeyNotMade",
	ErrUpdateNotPrepared:    "JET_errUpdateNotPrepared",
	ErrInvalidOperation:     "JET_errInvalidOperation",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	if s < 0 {
		return fmt.Sprintf("JET_err(%d)", int32(s))
	}
	return fmt.Sprintf("JET_wrn(%d)", int32(s))
}

// --------------------------------------------------------------------------
// Categories
// --------------------------------------------------------------------------

// Category groups error codes into the area of the engine that reported them.
type Category string

const (
	CategoryAPI         Category = "api"
	CategoryResource    Category = "resource"
	CategorySession     Category = "session"
	CategoryTransaction Category = "transaction"
	CategoryTable       Category = "table"
	CategoryIndex       Category = "index"
	CategoryColumn      Category = "column"
	CategoryRecord      Category = "record"
	CategoryUnknown     Category = "unknown"
)

// Category returns the area a status code belongs to.
func (s Status) Category() Category {
	switch s {
	case ErrInvalidGrbit, ErrInvalidParameter, ErrInvalidBufferSize, ErrBufferTooSmall, ErrInvalidOperation:
		return CategoryAPI
	case ErrOutOfMemory:
		return CategoryResource
	case ErrInvalidSesid, ErrTooManyActiveUsers:
		return CategorySession
	case ErrTransTooDeep, ErrNotInTransaction, ErrWriteConflict:
		return CategoryTransaction
	case ErrTableDuplicate, ErrObjectNotFound, ErrInvalidTableID:
		return CategoryTable
	case ErrIndexDuplicate, ErrIndexNotFound, ErrIndexInvalidDef, ErrKeyNotMade, ErrNullKeyDisallowed:
		return CategoryIndex
	case ErrNullInvalid, ErrColumnNotFound, ErrColumnDuplicate, ErrInvalidColumnType,
		ErrBadColumnID, ErrBadItagSequence, ErrColumnInUse, ErrMultiValuedDuplicate:
		return CategoryColumn
	case ErrRecordDeleted, ErrInvalidBookmark, ErrRecordNotFound, ErrNoCurrentRecord,
		ErrKeyDuplicate, ErrAlreadyPrepared, ErrUpdateNotPrepared:
		return CategoryRecord
	default:
		return CategoryUnknown
	}
}
