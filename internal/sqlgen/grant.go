package sqlgen

import (
	"github.com/dbsync/dbsync/internal/differ"
	"github.com/dbsync/dbsync/internal/model"
)

// generateGrantRevoke renders grant-set-difference into GRANT/REVOKE statements.
// Privileges sharing a (grantee, grantable) pair are folded into one statement the way pg_dump
// does, rather than emitting one statement per privilege.
func generateGrantRevoke(c differ.Change) ([]Statement, error) {
	kindWord, ident := objectLabel(c.Object)
	if kindWord == "" {
		return nil, nil
	}

	var out []Statement
	for _, grp := range groupPrivileges(c.Revokes) {
		out = append(out, ddl("REVOKE %s ON %s %s FROM %s", grp.list, kindWord, ident, model.EscapeIdentifier(grp.grantee)))
	}
	for _, grp := range groupPrivileges(c.Grants) {
		stmt := "GRANT %s ON %s %s TO %s"
		if grp.grantable {
			stmt += " WITH GRANT OPTION"
		}
		out = append(out, ddl(stmt, grp.list, kindWord, ident, model.EscapeIdentifier(grp.grantee)))
	}
	return out, nil
}

type privilegeGroup struct {
	grantee string
	grantable bool
	list string
}

func groupPrivileges(privs []model.Privilege) []privilegeGroup {
	order := []string{}
	byKey := map[string][]string{}
	grantable := map[string]bool{}
	for _, p := range privs {
		key := p.Grantee + "\x1f" + boolKey(p.Grantable)
		if _, seen := byKey[key]; !seen {
			order = append(order, key)
		}
		byKey[key] = append(byKey[key], p.Privilege)
		grantable[key] = p.Grantable
	}
	var out []privilegeGroup
	for _, key := range order {
		grantee := key[:len(key)-2]
		out = append(out, privilegeGroup{grantee: grantee, grantable: grantable[key], list: joinComma(byKey[key])})
	}
	return out
}

func boolKey(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func joinComma(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}
