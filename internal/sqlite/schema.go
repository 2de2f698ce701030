package sqlite

// createSpaces is the only table. Booleans are stored as 0/1.
const createSpaces = `CREATE TABLE spaces (
    space_id INTEGER PRIMARY KEY,
    is_public INTEGER NOT NULL,
    is_occupied INTEGER NOT NULL DEFAULT 0
);`
