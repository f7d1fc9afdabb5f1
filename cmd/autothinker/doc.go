// Command autothinker is the terminal client for AutoThinker. It generates
// startup blueprints from business ideas and manages the saved collection.
//
// Usage:
//
//	autothinker [--local | --db file] [--offline] <command>
//
//	autothinker generate [--save] [--format markdown|json|yaml] <idea...>
//	autothinker list [--search term] [--json]
//	autothinker show <id> [--format markdown|json|yaml]
//	autothinker create [--file blueprint.yaml | field flags]
//	autothinker edit <id> [field flags]
//	autothinker delete [--yes] <id>...
//	autothinker export <id> [--format ...] [--output file|-]
//	autothinker interactive
//
// Blueprints live in the store service at STORE_URL unless --db names a
// local SQLite file. Generation calls GENERATION_URL, or a built-in sample
// generator with --offline.
package main
