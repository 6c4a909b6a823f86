package metrics

// Attribute keys shared by the OTel instruments.
const (
	AttrEndpoint  = "endpoint"
	AttrNamespace = "namespace"
	AttrOutcome   = "outcome"
	AttrMethod    = "method"
	AttrPath      = "path"
	AttrStatus    = "status"
)
