package registry

import "github.com/ppiankov/guardrails/internal/guardrail"

// PasswordName is the name of the password custom guardrail.
const PasswordName = "password"

type thresholdDef struct {
	name    string
	kind    guardrail.ThresholdKind
	subject string
}

var builtinThresholds = []thresholdDef{
	{"keyspaces", guardrail.MaxThreshold, "Number of keyspaces"},
	{"tables", guardrail.MaxThreshold, "Number of tables"},
	{"columns_per_table", guardrail.MaxThreshold, "Number of columns per table"},
	{"secondary_indexes_per_table", guardrail.MaxThreshold, "Number of secondary indexes per table"},
	{"materialized_views_per_table", guardrail.MaxThreshold, "Number of materialized views per table"},
	{"page_size", guardrail.MaxThreshold, "Page size"},
	{"partition_keys_in_select", guardrail.MaxThreshold, "Number of partition keys in SELECT"},
	{"in_select_cartesian_product", guardrail.MaxThreshold, "The cartesian product of the IN restrictions"},
	{"fields_per_udt", guardrail.MaxThreshold, "Number of fields per user type"},
	{"items_per_collection", guardrail.MaxThreshold, "Number of items per collection"},
	{"vector_dimensions", guardrail.MaxThreshold, "Number of vector dimensions"},
	{"maximum_replication_factor", guardrail.MaxThreshold, "The keyspace replication factor"},
	{"minimum_replication_factor", guardrail.MinThreshold, "The keyspace replication factor"},
}

type flagDef struct {
	name       string
	feature    string
	alwaysWarn bool
}

var builtinFlags = []flagDef{
	{"user_timestamps", "User provided timestamps (USING TIMESTAMP)", false},
	{"group_by", "GROUP BY functionality", false},
	{"drop_truncate_table", "DROP and TRUNCATE TABLE functionality", false},
	{"drop_keyspace", "DROP KEYSPACE functionality", false},
	{"secondary_indexes", "User creation of secondary indexes", false},
	{"uncompressed_tables", "Uncompressed table", false},
	{"compact_tables", "Creation of new COMPACT STORAGE tables", false},
	{"read_before_write_list_operations", "List operation requiring read before write", false},
	{"allow_filtering", "Querying with ALLOW FILTERING", false},
	{"simplestrategy", "SimpleStrategy", true},
	{"bulk_load", "Bulk loading of SSTables", false},
}
