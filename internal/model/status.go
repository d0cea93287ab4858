package model

// NextStatus computes the state an issue moves to when a status change is
// requested. resolved-by-authority is terminal and absorbs everything.
// Privileged overrides win over the requested change; anything else is a
// plain advance, which toggles between resolving and resolved once the
// issue has left new.
func NextStatus(current, requested Status) Status {
	if current == StatusResolvedByAuthority {
		return StatusResolvedByAuthority
	}
	switch requested {
	case StatusResolvedByAuthority:
		return StatusResolvedByAuthority
	case StatusVerified:
		return StatusVerified
	}
	if current == StatusResolving {
		return StatusResolved
	}
	return StatusResolving
}
