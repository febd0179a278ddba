// Package playlist implements playlist authorization and the cache-assisted
// song list.
//
// Authorization is two named predicates: VerifyOwnership (owner only) guards
// playlist deletion and collaborator management, VerifyAccess (owner or
// collaborator) guards song membership and reads.
//
// Song lists are read through a lookaside cache and invalidated, never
// updated, after every committed membership change. Every path stays correct
// with the cache permanently absent.
package playlist
