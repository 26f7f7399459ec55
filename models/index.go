package models

type IndexInfo struct {
	Collection string
	IndexName  string
}

// GetIndexInfo resolves the engine index (or alias) searched for a collection.
func GetIndexInfo(prefix string, c Collection) IndexInfo {
	name := c.Index
	if prefix != "" {
		name = prefix + "_" + c.Index
	}
	return IndexInfo{
		Collection: c.Name,
		IndexName:  name,
	}
}
