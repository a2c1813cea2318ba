package ports

import "context"

const ServiceName = "voting.VotingService"

const (
	OpGetVotingOptions = "GetVotingOptions"
	OpVote             = "Vote"
	OpGetResults       = "GetResults"
)

// ProcedurePath returns the URL path a remote operation is served on.
func ProcedurePath(operation string) string {
	return "/" + ServiceName + "/" + operation
}

// Transport issues one named remote operation. req is serialized as-is and
// the decoded reply is stored in resp. Failures are *domain.TransportError.
type Transport interface {
	Send(ctx context.Context, operation string, req any, resp any) error
}
