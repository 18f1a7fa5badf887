package migrations

import "embed"

// PostgresFS embeds the wallet and trade record schema migrations.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// ClickhouseFS embeds the swap attempt log schema migrations.
//
//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS
