package logger

// Field keys shared by every package that logs pipeline activity.
const (
	FieldService    = "service"
	FieldComponent  = "component"
	FieldTraceID    = "trace_id"
	FieldSpanID     = "span_id"
	FieldPipeline   = "pipeline"
	FieldPipelineID = "pipeline_id"
	FieldStage      = "stage"
	FieldTag        = "tag"
	FieldRole       = "role"
	FieldTopology   = "topology"
	FieldError      = "error"
)

// Fields builds a field map from alternating key-value pairs. Non-string
// keys and a trailing key without a value are skipped.
//
//	log.Info("Starting stage", logger.Fields("stage", 1, "tag", "MAP"))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// StageFields identifies one pipeline stage.
func StageFields(index int, tag, role string) map[string]interface{} {
	return map[string]interface{}{
		FieldStage: index,
		FieldTag:   tag,
		FieldRole:  role,
	}
}

// MergeWithError adds err to fields, allocating the map when nil.
func MergeWithError(fields map[string]interface{}, err error) map[string]interface{} {
	if fields == nil {
		fields = make(map[string]interface{}, 1)
	}
	fields[FieldError] = err.Error()
	return fields
}
