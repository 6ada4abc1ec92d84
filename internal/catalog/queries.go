package catalog

// pgMajor maps server_version_num (e.g. 150004) to the "major version floor" used to key the
// query-variant matrix below: 90400, 90600, 100000, 110000, 120000, 130000, 140000, 150000.
var pgMajorFloors = []int{90400, 90600, 100000, 110000, 120000, 130000, 140000, 150000}

func pgMajor(serverVersionNum int) int {
	floor := pgMajorFloors[0]
	for _, f := range pgMajorFloors {
		if serverVersionNum >= f {
			floor = f
		}
	}
	return floor
}

// versionedQuery is a map[majorVersionFloor]string, keyed by the lowest server major version the
// SQL text is valid for. pick walks down from the server's own floor to the nearest defined
// variant, so a query written for 9.6 keeps serving servers at 10, 11, 12... until a newer
// variant is added for one of those floors.
type versionedQuery map[int]string

func (vq versionedQuery) pick(serverVersionNum int) string {
	floor := pgMajor(serverVersionNum)
	for {
		if q, ok := vq[floor]; ok {
			return q
		}
		next := 0
		for _, f := range pgMajorFloors {
			if f < floor && f > next {
				next = f
			}
		}
		if next == 0 {
			// No variant defined at or below the server's floor; fall back to the oldest one we have.
			oldest, oldestVer := "", 1<<31-1
			for v, q := range vq {
				if v < oldestVer {
					oldestVer, oldest = v, q
				}
			}
			return oldest
		}
		floor = next
	}
}

func (r *Reader) query(vq versionedQuery) string {
	return vq.pick(r.serverVersion)
}

// getColumnsQuery varies because attidentity (PG10+) and attgenerated (PG12+) don't exist on older
// servers; older variants select literal '' in their place so the Scan shape stays uniform.
var getColumnsQuery = versionedQuery{
	90400: `
 SELECT a.attname, format_type(a.atttypid, a.atttypmod), a.attnotnull, a.attnum,
 coalesce(pg_get_expr(ad.adbin, ad.adrelid), '') AS default_value,
 coalesce(co.collname, '') AS collation_name, coalesce(cn.nspname, '') AS collation_schema,
 '' AS identity_type, 0::bigint AS identity_start, 0::bigint AS identity_increment,
 0::bigint AS identity_max, 0::bigint AS identity_min, 0::bigint AS identity_cache, false AS identity_cycle,
 coalesce(a.attstattarget, -1) AS stat_target, a.attstorage::text,
 '' AS generated_expr
 FROM pg_attribute a
 JOIN pg_class c ON c.oid = a.attrelid
 LEFT JOIN pg_attrdef ad ON ad.adrelid = a.attrelid AND ad.adnum = a.attnum
 LEFT JOIN pg_collation co ON co.oid = a.attcollation AND co.collname != 'default'
 LEFT JOIN pg_namespace cn ON cn.oid = co.collnamespace
 WHERE a.attrelid = $1 AND a.attnum > 0 AND NOT a.attisdropped
 ORDER BY a.attnum`,
	100000: `
 SELECT a.attname, format_type(a.atttypid, a.atttypmod), a.attnotnull, a.attnum,
 coalesce(pg_get_expr(ad.adbin, ad.adrelid), '') AS default_value,
 coalesce(co.collname, '') AS collation_name, coalesce(cn.nspname, '') AS collation_schema,
 a.attidentity::text AS identity_type,
 coalesce(s.seqstart, 0) AS identity_start, coalesce(s.seqincrement, 0) AS identity_increment,
 coalesce(s.seqmax, 0) AS identity_max, coalesce(s.seqmin, 0) AS identity_min,
 coalesce(s.seqcache, 0) AS identity_cache, coalesce(s.seqcycle, false) AS identity_cycle,
 coalesce(a.attstattarget, -1) AS stat_target, a.attstorage::text,
 '' AS generated_expr
 FROM pg_attribute a
 JOIN pg_class c ON c.oid = a.attrelid
 LEFT JOIN pg_attrdef ad ON ad.adrelid = a.attrelid AND ad.adnum = a.attnum
 LEFT JOIN pg_collation co ON co.oid = a.attcollation AND co.collname != 'default'
 LEFT JOIN pg_namespace cn ON cn.oid = co.collnamespace
 LEFT JOIN pg_depend dep ON dep.refobjid = a.attrelid AND dep.refobjsubid = a.attnum AND dep.deptype = 'i'
 LEFT JOIN pg_sequence s ON s.seqrelid = dep.objid
 WHERE a.attrelid = $1 AND a.attnum > 0 AND NOT a.attisdropped
 ORDER BY a.attnum`,
	120000: `
 SELECT a.attname, format_type(a.atttypid, a.atttypmod), a.attnotnull, a.attnum,
 coalesce(pg_get_expr(ad.adbin, ad.adrelid), '') AS default_value,
 coalesce(co.collname, '') AS collation_name, coalesce(cn.nspname, '') AS collation_schema,
 a.attidentity::text AS identity_type,
 coalesce(s.seqstart, 0) AS identity_start, coalesce(s.seqincrement, 0) AS identity_increment,
 coalesce(s.seqmax, 0) AS identity_max, coalesce(s.seqmin, 0) AS identity_min,
 coalesce(s.seqcache, 0) AS identity_cache, coalesce(s.seqcycle, false) AS identity_cycle,
 coalesce(a.attstattarget, -1) AS stat_target, a.attstorage::text,
 case when a.attgenerated != '' then coalesce(pg_get_expr(ad.adbin, ad.adrelid), '') else '' end AS generated_expr
 FROM pg_attribute a
 JOIN pg_class c ON c.oid = a.attrelid
 LEFT JOIN pg_attrdef ad ON ad.adrelid = a.attrelid AND ad.adnum = a.attnum
 LEFT JOIN pg_collation co ON co.oid = a.attcollation AND co.collname != 'default'
 LEFT JOIN pg_namespace cn ON cn.oid = co.collnamespace
 LEFT JOIN pg_depend dep ON dep.refobjid = a.attrelid AND dep.refobjsubid = a.attnum AND dep.deptype = 'i'
 LEFT JOIN pg_sequence s ON s.seqrelid = dep.objid
 WHERE a.attrelid = $1 AND a.attnum > 0 AND NOT a.attisdropped
 ORDER BY a.attnum`,
}

// getTablesQuery varies because relispartition/partition bound expressions don't exist pre-PG10.
var getTablesQuery = versionedQuery{
	90400: `
 SELECT c.oid, n.nspname, c.relname, c.reltablespace::regclass::text, '', '', '', ''
 FROM pg_class c
 JOIN pg_namespace n ON n.oid = c.relnamespace
 WHERE c.relkind = 'r' AND ` + systemSchemaPredicate + ` AND ` + extensionOwnedPredicate("c.oid"),
	100000: `
 SELECT c.oid, n.nspname, c.relname,
 coalesce(c.reltablespace::regclass::text, ''),
 coalesce(pg_get_partkeydef(c.oid), ''),
 coalesce(pn.nspname, ''), coalesce(pc.relname, ''),
 case when c.relispartition then coalesce(pg_get_expr(c.relpartbound, c.oid), '') else '' end
 FROM pg_class c
 JOIN pg_namespace n ON n.oid = c.relnamespace
 LEFT JOIN pg_inherits i ON i.inhrelid = c.oid AND c.relispartition
 LEFT JOIN pg_class pc ON pc.oid = i.inhparent
 LEFT JOIN pg_namespace pn ON pn.oid = pc.relnamespace
 WHERE c.relkind IN ('r', 'p') AND ` + systemSchemaPredicate + ` AND ` + extensionOwnedPredicate("c.oid"),
}
