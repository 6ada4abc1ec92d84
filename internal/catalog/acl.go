package catalog

import (
	"strings"

	"github.com/dbsync/dbsync/internal/model"
)

// privilegeLetters maps a Postgres ACL privilege letter (see the aclitem grammar documented for
// pg_catalog.pg_namespace.nspacl etc.) to its SQL keyword.
var privilegeLetters = map[byte]string{
	'r': "SELECT",
	'w': "UPDATE",
	'a': "INSERT",
	'd': "DELETE",
	'D': "TRUNCATE",
	'x': "REFERENCES",
	't': "TRIGGER",
	'X': "EXECUTE",
	'U': "USAGE",
	'C': "CREATE",
	'c': "CONNECT",
	'T': "TEMPORARY",
}

// decodeACL turns a raw aclitem[] (scanned as text[] via lib/pq) into model.Privilege entries.
// Each aclitem has the form "grantee=privileges/grantor", where a trailing "*" after a privilege
// letter marks it grantable, and an empty grantee before "=" means PUBLIC.
func decodeACL(acl []string) []model.Privilege {
	var out []model.Privilege
	for _, item := range acl {
		eq := strings.IndexByte(item, '=')
		slash := strings.LastIndexByte(item, '/')
		if eq < 0 || slash < 0 || slash < eq {
			continue
		}
		grantee := item[:eq]
		privs := item[eq+1 : slash]
		grantor := item[slash+1:]

		i := 0
		for i < len(privs) {
			letter := privs[i]
			name, ok := privilegeLetters[letter]
			if !ok {
				i++
				continue
			}
			grantable := false
			i++
			if i < len(privs) && privs[i] == '*' {
				grantable = true
				i++
			}
			out = append(out, model.Privilege{
					Grantee: grantee,
					Grantor: grantor,
					Privilege: name,
					Grantable: grantable,
			})
		}
	}
	return out
}
