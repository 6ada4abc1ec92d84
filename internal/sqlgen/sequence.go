package sqlgen

import (
	"fmt"

	"github.com/dbsync/dbsync/internal/model"
)

func CreateSequence(s model.Sequence) Statement {
	stmt := fmt.Sprintf("CREATE SEQUENCE %s AS %s INCREMENT BY %d MINVALUE %d MAXVALUE %d START WITH %d CACHE %d%s",
		s.QualifiedSQL(), s.DataType, s.Increment, s.MinValue, s.MaxValue, s.StartValue, s.CacheSize, cycleSuffix(s.Cycle))
	return ddl(stmt)
}

// AlterSequence renders one ALTER SEQUENCE per changed start, increment, min/max value, cache,
// cycle and owner attribute. The data type and the OWNED BY column link are not altered.
func AlterSequence(old, new model.Sequence) []Statement {
	var actions []string
	if old.StartValue != new.StartValue {
		actions = append(actions, fmt.Sprintf("START WITH %d", new.StartValue))
	}
	if old.Increment != new.Increment {
		actions = append(actions, fmt.Sprintf("INCREMENT BY %d", new.Increment))
	}
	if old.MinValue != new.MinValue {
		actions = append(actions, fmt.Sprintf("MINVALUE %d", new.MinValue))
	}
	if old.MaxValue != new.MaxValue {
		actions = append(actions, fmt.Sprintf("MAXVALUE %d", new.MaxValue))
	}
	if old.CacheSize != new.CacheSize {
		actions = append(actions, fmt.Sprintf("CACHE %d", new.CacheSize))
	}
	if old.Cycle != new.Cycle {
		if new.Cycle {
			actions = append(actions, "CYCLE")
		} else {
			actions = append(actions, "NO CYCLE")
		}
	}
	if old.OwnerName != new.OwnerName {
		actions = append(actions, "OWNER TO "+model.EscapeIdentifier(new.OwnerName))
	}

	var out []Statement
	for _, a := range actions {
		out = append(out, ddl("ALTER SEQUENCE %s %s", new.QualifiedSQL(), a))
	}
	return out
}
