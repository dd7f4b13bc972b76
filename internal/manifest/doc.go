// Package manifest persists the record of every unique asset synced to the
// blob store, plus the flat catalog of the URLs those assets live at.
//
// # Manifest Format
//
// The manifest is a JSON object keyed by content identity, the hex SHA-256
// of the asset bytes followed by its extension:
//
//	{
//	  "version": 1,
//	  "updatedAt": "2025-01-02T03:04:05.000Z",
//	  "items": {
//	    "9f86d0...png": {
//	      "digest": "9f86d0...",
//	      "extension": ".png",
//	      "key": "images/9f86d0...png",
//	      "url": "https://.../images/9f86d0...png",
//	      "usedIn": ["src/posts/a.md"],
//	      ...
//	    }
//	  }
//	}
//
// Comments and trailing commas are tolerated on load. A file that is
// missing, unreadable, structurally invalid or of another version is
// replaced by an empty manifest rather than failing the run.
//
// # Usage
//
//	store := manifest.NewStore(manifest.StoreOptions{Path: mp, CatalogPath: cp})
//	m := store.Load()
//	store.Upsert(m, entry)
//	err := store.Persist(m, store.Catalog(m, touched))
package manifest
