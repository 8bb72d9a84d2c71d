package domain

// Access policy for annotations, kept as pure functions so read and write
// authorization stay independently testable.
//
// Reads are allowed for the owner and, when the owner opted in via IsShared,
// for everyone else. Writes are owner-only regardless of sharing.

// CanRead reports whether userID may see the annotation.
func CanRead(a *Annotation, userID string) bool {
	return a.OwnerID == userID || a.IsShared
}

// CanModify reports whether userID may update or delete the annotation.
func CanModify(a *Annotation, userID string) bool {
	return a.OwnerID == userID
}
