package model

// Privilege is a single decoded ACL tuple: an aclitem decodes into
// (grantee, grantor, privilege, grantable).
type Privilege struct {
	Grantee string
	Grantor string
	Privilege string
	Grantable bool
}

func (p Privilege) key() string {
	return p.Grantee + "\x1f" + p.Privilege + "\x1f" + p.Grantor
}

// PrivilegeHolder is implemented by every object kind that can carry GRANT/REVOKE privileges.
type PrivilegeHolder interface {
	Object
	Privileges() []Privilege
}

// DiffPrivileges computes the set-difference of (grantee, privilege, grantor) triples described
// in ("Grant/Revoke"). toGrant are present only in desired; toRevoke are present only
// in current. A triple present on both sides with a different grantable flag is in both lists.
func DiffPrivileges(current, desired []Privilege) (toGrant, toRevoke []Privilege) {
	currentByKey := make(map[string]Privilege, len(current))
	for _, p := range current {
		currentByKey[p.key()] = p
	}
	desiredByKey := make(map[string]Privilege, len(desired))
	for _, p := range desired {
		desiredByKey[p.key()] = p
	}

	for k, p := range desiredByKey {
		if old, ok := currentByKey[k]; !ok || old.Grantable != p.Grantable {
			toGrant = append(toGrant, p)
		}
	}
	for k, p := range currentByKey {
		if newP, ok := desiredByKey[k]; !ok || newP.Grantable != p.Grantable {
			toRevoke = append(toRevoke, p)
		}
	}
	return toGrant, toRevoke
}
