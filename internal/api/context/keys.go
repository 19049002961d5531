package context

type Key string

const (
	Claims   Key = "claims"
	Identity Key = "identity"
	Params   Key = "params"
)
