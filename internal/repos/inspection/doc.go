// Package inspection derives repository status snapshots from on-disk git metadata.
//
// Inspector opens one repository per call with go-git, optionally fetches the origin
// remote through a Fetcher, and degrades every metric to a neutral value instead of
// failing when the repository state is incomplete. Only open and fetch failures are
// reported as errors.
package inspection
