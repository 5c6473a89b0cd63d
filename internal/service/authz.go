package service

// CanMutate is the single ownership predicate for every review and
// comment mutation: the actor must own the resource or be an admin.
// All mutation paths call this before touching storage.
func CanMutate(actorID int64, actorIsAdmin bool, ownerID int64) bool {
	return actorIsAdmin || actorID == ownerID
}
