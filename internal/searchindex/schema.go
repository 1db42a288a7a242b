package searchindex

const schema = `
CREATE TABLE IF NOT EXISTS nodes (
	id TEXT PRIMARY KEY,
	document_id TEXT NOT NULL,
	parent_id TEXT,
	content TEXT NOT NULL,
	note TEXT,
	tags TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_nodes_document_id ON nodes(document_id);

CREATE VIRTUAL TABLE IF NOT EXISTS nodes_fts USING fts5(
	id UNINDEXED,
	document_id UNINDEXED,
	content,
	note,
	tags,
	content='nodes',
	content_rowid='rowid'
);

CREATE TRIGGER IF NOT EXISTS nodes_ai AFTER INSERT ON nodes BEGIN
	INSERT INTO nodes_fts(rowid, id, document_id, content, note, tags)
	VALUES (new.rowid, new.id, new.document_id, new.content, new.note, new.tags);
END;

CREATE TRIGGER IF NOT EXISTS nodes_ad AFTER DELETE ON nodes BEGIN
	INSERT INTO nodes_fts(nodes_fts, rowid, id, document_id, content, note, tags)
	VALUES ('delete', old.rowid, old.id, old.document_id, old.content, old.note, old.tags);
END;

CREATE TRIGGER IF NOT EXISTS nodes_au AFTER UPDATE ON nodes BEGIN
	INSERT INTO nodes_fts(nodes_fts, rowid, id, document_id, content, note, tags)
	VALUES ('delete', old.rowid, old.id, old.document_id, old.content, old.note, old.tags);
	INSERT INTO nodes_fts(rowid, id, document_id, content, note, tags)
	VALUES (new.rowid, new.id, new.document_id, new.content, new.note, new.tags);
END;

CREATE TABLE IF NOT EXISTS node_links (
	source_id TEXT NOT NULL,
	target_id TEXT NOT NULL,
	PRIMARY KEY (source_id, target_id)
);

CREATE INDEX IF NOT EXISTS idx_node_links_target ON node_links(target_id);
`
