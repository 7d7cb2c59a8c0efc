package protocol

import "fmt"

// ValueType is the wire representation tag of a property value. Property ids
// carry their value type in the bits selected by ValueTypeMask.
type ValueType uint32

const (
	TypeString   ValueType = 0x100000
	TypeBoolean  ValueType = 0x200000
	TypeInt32    ValueType = 0x400000
	TypeInt32Vec ValueType = 0x410000
	TypeInt64    ValueType = 0x500000
	TypeInt64Vec ValueType = 0x510000
	TypeFloat    ValueType = 0x600000
	TypeFloatVec ValueType = 0x610000
	TypeBytes    ValueType = 0x700000
	TypeMixed    ValueType = 0xe00000

	ValueTypeMask uint32 = 0xff0000
)

var valueTypeNames = map[ValueType]string{
	TypeString:   "STRING",
	TypeBoolean:  "BOOLEAN",
	TypeInt32:    "INT32",
	TypeInt32Vec: "INT32_VEC",
	TypeInt64:    "INT64",
	TypeInt64Vec: "INT64_VEC",
	TypeFloat:    "FLOAT",
	TypeFloatVec: "FLOAT_VEC",
	TypeBytes:    "BYTES",
	TypeMixed:    "MIXED",
}

// ValueTypeOf extracts the value type bits embedded in a property id.
func ValueTypeOf(prop uint32) ValueType {
	return ValueType(prop & ValueTypeMask)
}

// Valid reports whether t is one of the ten known value types.
func (t ValueType) Valid() bool {
	_, ok := valueTypeNames[t]
	return ok
}

func (t ValueType) String() string {
	if name, ok := valueTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ValueType(0x%x)", uint32(t))
}

// MsgType is the kind of an InjectionMessage.
type MsgType int32

const (
	GetConfigCmd       MsgType = 0
	GetConfigResp      MsgType = 1
	GetConfigAllCmd    MsgType = 2
	GetConfigAllResp   MsgType = 3
	GetPropertyCmd     MsgType = 4
	GetPropertyResp    MsgType = 5
	GetPropertyAllCmd  MsgType = 6
	GetPropertyAllResp MsgType = 7
	SetPropertyCmd     MsgType = 8
	SetPropertyResp    MsgType = 9
	SetPropertyAsync   MsgType = 10
)

var msgTypeNames = map[MsgType]string{
	GetConfigCmd:       "GET_CONFIG_CMD",
	GetConfigResp:      "GET_CONFIG_RESP",
	GetConfigAllCmd:    "GET_CONFIG_ALL_CMD",
	GetConfigAllResp:   "GET_CONFIG_ALL_RESP",
	GetPropertyCmd:     "GET_PROPERTY_CMD",
	GetPropertyResp:    "GET_PROPERTY_RESP",
	GetPropertyAllCmd:  "GET_PROPERTY_ALL_CMD",
	GetPropertyAllResp: "GET_PROPERTY_ALL_RESP",
	SetPropertyCmd:     "SET_PROPERTY_CMD",
	SetPropertyResp:    "SET_PROPERTY_RESP",
	SetPropertyAsync:   "SET_PROPERTY_ASYNC",
}

func (m MsgType) String() string {
	if name, ok := msgTypeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("MsgType(%d)", int32(m))
}

// Status is the result code carried by response messages.
type Status int32

const (
	ResultOK                   Status = 0
	ErrorUnknown               Status = 1
	ErrorUnimplementedCmd      Status = 2
	ErrorInvalidProperty       Status = 3
	ErrorInvalidAreaID         Status = 4
	ErrorPropertyUninitialized Status = 5
	ErrorWriteOnlyProperty     Status = 6
	ErrorMemoryAllocFailed     Status = 7
	ErrorInvalidOperation      Status = 8
)

var statusNames = map[Status]string{
	ResultOK:                   "RESULT_OK",
	ErrorUnknown:               "ERROR_UNKNOWN",
	ErrorUnimplementedCmd:      "ERROR_UNIMPLEMENTED_CMD",
	ErrorInvalidProperty:       "ERROR_INVALID_PROPERTY",
	ErrorInvalidAreaID:         "ERROR_INVALID_AREA_ID",
	ErrorPropertyUninitialized: "ERROR_PROPERTY_UNINITIALIZED",
	ErrorWriteOnlyProperty:     "ERROR_WRITE_ONLY_PROPERTY",
	ErrorMemoryAllocFailed:     "ERROR_MEMORY_ALLOC_FAILED",
	ErrorInvalidOperation:      "ERROR_INVALID_OPERATION",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int32(s))
}

// PropStatus is the availability of a reported property value.
type PropStatus int32

const (
	PropAvailable   PropStatus = 0
	PropUnavailable PropStatus = 1
	PropError       PropStatus = 2
)

// PropGet names one property (and optionally one area) to query.
type PropGet struct {
	Prop   uint32
	AreaID *int32
}

// AreaConfig holds the per-area limits of a property config.
type AreaConfig struct {
	AreaID        int32
	MinInt32Value *int32
	MaxInt32Value *int32
	MinInt64Value *int64
	MaxInt64Value *int64
	MinFloatValue *float32
	MaxFloatValue *float32
}

// PropConfig is one property config as reported by the remote side.
type PropConfig struct {
	Prop           uint32
	Access         *int32
	ChangeMode     *int32
	ValueType      ValueType
	SupportedAreas *int32
	AreaConfigs    []AreaConfig
	ConfigFlags    *int32
	ConfigArray    []int32
	ConfigString   *string
	MinSampleRate  *float32
	MaxSampleRate  *float32
}

// PropValue is one property value entry. Only the payload fields matching
// ValueType are expected to be populated.
type PropValue struct {
	Prop        uint32
	ValueType   ValueType
	Timestamp   *int64
	AreaID      *int32
	Int32Values []int32
	Int64Values []int64
	FloatValues []float32
	StringValue *string
	BytesValue  []byte
	Status      *PropStatus
}

// InjectionMessage is the envelope exchanged with the injection server.
// Which of Props, Configs and Values is populated depends on Type.
type InjectionMessage struct {
	Type    MsgType
	Status  *Status
	Props   []PropGet
	Configs []PropConfig
	Values  []PropValue
}

// Int32Ptr returns a pointer to v, for optional wire fields.
func Int32Ptr(v int32) *int32 { return &v }

// StringPtr returns a pointer to v, for optional wire fields.
func StringPtr(v string) *string { return &v }
