package protocol

import "google.golang.org/protobuf/encoding/protowire"

// Field numbers of the remote injection schema. These must match the server.
const (
	fieldMsgType protowire.Number = 1
	fieldStatus  protowire.Number = 2
	fieldProp    protowire.Number = 3
	fieldConfig  protowire.Number = 4
	fieldValue   protowire.Number = 5
)

const (
	getFieldProp   protowire.Number = 1
	getFieldAreaID protowire.Number = 2
)

const (
	areaFieldAreaID   protowire.Number = 1
	areaFieldMinInt32 protowire.Number = 2
	areaFieldMaxInt32 protowire.Number = 3
	areaFieldMinInt64 protowire.Number = 4
	areaFieldMaxInt64 protowire.Number = 5
	areaFieldMinFloat protowire.Number = 6
	areaFieldMaxFloat protowire.Number = 7
)

const (
	configFieldProp           protowire.Number = 1
	configFieldAccess         protowire.Number = 2
	configFieldChangeMode     protowire.Number = 3
	configFieldValueType      protowire.Number = 4
	configFieldSupportedAreas protowire.Number = 5
	configFieldAreaConfigs    protowire.Number = 6
	configFieldConfigFlags    protowire.Number = 7
	configFieldConfigArray    protowire.Number = 8
	configFieldConfigString   protowire.Number = 9
	configFieldMinSampleRate  protowire.Number = 10
	configFieldMaxSampleRate  protowire.Number = 11
)

const (
	valueFieldProp        protowire.Number = 1
	valueFieldValueType   protowire.Number = 2
	valueFieldTimestamp   protowire.Number = 3
	valueFieldAreaID      protowire.Number = 4
	valueFieldInt32Values protowire.Number = 5
	valueFieldInt64Values protowire.Number = 6
	valueFieldFloatValues protowire.Number = 7
	valueFieldStringValue protowire.Number = 8
	valueFieldBytesValue  protowire.Number = 9
	valueFieldStatus      protowire.Number = 10
)
