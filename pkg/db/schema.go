package db

// tables.
const (
	tableProjectsName  = "projects"
	tableEntriesName   = "prompt_entries"
	tableTagsName      = "tags"
	tableRelationName  = "prompt_entry_tags"
	tableTemplatesName = "prompt_templates"
)

type Schema struct {
	Name  Table
	SQL   string
	Index []string
}

// schemaProjects is the schema for the projects table.
var schemaProjects = Schema{
	Name: tableProjectsName,
	SQL:  tableProjectsSchema,
}

// schemaEntries is the schema for the entries table.
var schemaEntries = Schema{
	Name:  tableEntriesName,
	SQL:   tableEntriesSchema,
	Index: []string{tableEntriesIndexUpdated, tableEntriesIndexStarred},
}

// schemaTags is the schema for the tags table.
var schemaTags = Schema{
	Name: tableTagsName,
	SQL:  tableTagsSchema,
}

// schemaRelation is the schema for the entry/tag relation table.
var schemaRelation = Schema{
	Name: tableRelationName,
	SQL:  tableRelationSchema,
}

// schemaTemplates is the schema for the templates table.
var schemaTemplates = Schema{
	Name:  tableTemplatesName,
	SQL:   tableTemplatesSchema,
	Index: []string{tableTemplatesIndex},
}

// projects table.
const tableProjectsSchema = `
    CREATE TABLE IF NOT EXISTS projects (
        id          TEXT    PRIMARY KEY,
        name        TEXT    NOT NULL,
        created_at  INTEGER NOT NULL,
        updated_at  INTEGER NOT NULL
    );`

// entries table.
const (
	tableEntriesSchema = `
    CREATE TABLE IF NOT EXISTS prompt_entries (
        id             TEXT    PRIMARY KEY,
        project_id     TEXT    NOT NULL,
        title          TEXT,
        body_markdown  TEXT    NOT NULL,
        is_starred     INTEGER NOT NULL DEFAULT 0,
        is_locked      INTEGER NOT NULL DEFAULT 0,
        source_json    TEXT,
        created_at     INTEGER NOT NULL,
        updated_at     INTEGER NOT NULL,
        FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
    );`

	tableEntriesIndexUpdated = `
    CREATE INDEX IF NOT EXISTS idx_prompt_entries_project_updated
    ON prompt_entries(project_id, updated_at DESC);`

	tableEntriesIndexStarred = `
    CREATE INDEX IF NOT EXISTS idx_prompt_entries_project_star_updated
    ON prompt_entries(project_id, is_starred, updated_at DESC);`
)

// tags table.
const tableTagsSchema = `
    CREATE TABLE IF NOT EXISTS tags (
        id          TEXT    PRIMARY KEY,
        name        TEXT    NOT NULL UNIQUE,
        category    TEXT,
        color       TEXT,
        is_default  INTEGER NOT NULL DEFAULT 0,
        created_at  INTEGER NOT NULL
    );`

// relation table.
const tableRelationSchema = `
    CREATE TABLE IF NOT EXISTS prompt_entry_tags (
        prompt_entry_id  TEXT NOT NULL,
        tag_id           TEXT NOT NULL,
        FOREIGN KEY (prompt_entry_id) REFERENCES prompt_entries(id) ON DELETE CASCADE,
        FOREIGN KEY (tag_id) REFERENCES tags(id) ON DELETE CASCADE,
        PRIMARY KEY (prompt_entry_id, tag_id)
    );`

// templates table.
const (
	tableTemplatesSchema = `
    CREATE TABLE IF NOT EXISTS prompt_templates (
        id             TEXT    PRIMARY KEY,
        project_id     TEXT,
        name           TEXT    NOT NULL,
        body_markdown  TEXT    NOT NULL,
        schema_json    TEXT,
        created_at     INTEGER NOT NULL,
        updated_at     INTEGER NOT NULL,
        FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
    );`

	tableTemplatesIndex = `
    CREATE INDEX IF NOT EXISTS idx_templates_project
    ON prompt_templates(project_id);`
)
