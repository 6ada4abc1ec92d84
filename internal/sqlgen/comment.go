package sqlgen

import (
	"github.com/dbsync/dbsync/internal/differ"
	"github.com/dbsync/dbsync/internal/model"
)

func generateComment(c differ.Change) ([]Statement, error) {
	kindWord, ident := objectLabel(c.Object)
	if kindWord == "" {
		return nil, nil
	}
	text := "NULL"
	if c.HasComment {
		text = model.EscapeLiteral(c.CommentText)
	}
	return []Statement{ddl("COMMENT ON %s %s IS %s", kindWord, ident, text)}, nil
}
