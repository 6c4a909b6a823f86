package logging

// Common structured log field keys to keep logs searchable/consistent.
const (
	FieldService    = "service"
	FieldVersion    = "version"
	FieldRunID      = "run_id"
	FieldEndpoint   = "endpoint"
	FieldNamespace  = "namespace"
	FieldKey        = "key"
	FieldDate       = "date"
	FieldSeason     = "season"
	FieldTeamID     = "team_id"
	FieldPitcherID  = "pitcher_id"
	FieldGamePK     = "game_pk"
	FieldStatusCode = "status_code"
	FieldCount      = "count"
	FieldDurationMS = "duration_ms"
)
