package models

// Report is one control-run report frame as pushed (or pulled) from the
// signal-generation backend: the raw {rows, meta} table JSON plus the
// routing fields the service needs before any enrichment happens.
type Report struct {
	RunDate  string
	Env      string
	Received int64  // unix seconds, when this service saw the frame
	Payload  []byte // raw table JSON, handed to the brain untouched
}
