// Package searchdata reads and writes Doxygen search index shards.
//
// A shard is the generated search/<category>_<bucket>.js file the
// documentation search box loads. It holds one table literal:
//
//	var searchData=
//	[
//	  ['remove',['remove',['../classtgui_1_1Container.html#a02b9...',1,'tgui::Container::remove()'],...]],
//	  ...
//	];
//
// Each entry maps a lowercase key to a display label and a list of
// occurrences; each occurrence is a target URL, a frame flag and an optional
// context label.
//
// # Reading
//
//	shard, err := searchdata.ParseFile("search/all_f.js")
//	matches := shard.Lookup("remove")
//
// Lookups never fail: unknown keys return an empty slice.
//
// # Writing
//
// Encode reproduces the generator's layout exactly, so parse and encode is a
// lossless round trip.
//
// # Catalogs
//
// NewCatalog merges several shards and adds a trigram index for substring
// queries. Shards and catalogs are immutable and safe for concurrent use.
package searchdata
