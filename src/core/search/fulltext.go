package search

import "strings"

// Index mapping fields used by the keyword query. Name fields carry the
// human-facing labels, type fields the classification facets.
var (
	nameFields = []string{"fileName", "title"}
	typeFields = []string{"assetType", "fileType", "extension"}
)

// BuildKeywordQuery builds the boosted boolean query body for the full-text
// index, including pagination, filters, and facet aggregations when
// requested. The boost ladder is fixed; keyword relevance parity depends on
// reproducing it exactly.
func BuildKeywordQuery(q SearchQuery) map[string]interface{} {
	body := map[string]interface{}{
		"from": q.Offset(),
		"size": q.PageSize,
	}

	// Exact storage-identifier lookups bypass the boosted tree entirely.
	if q.StorageIdentifier != "" {
		body["query"] = map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []interface{}{
					map[string]interface{}{
						"term": map[string]interface{}{
							"storageIdentifier.keyword": q.StorageIdentifier,
						},
					},
				},
				"filter": buildFilterClauses(q.Filters),
			},
		}
		return body
	}

	terms := strings.Fields(q.Text)

	var should []interface{}
	if len(terms) > 1 {
		should = multiTermClauses(q.Text)
	} else {
		should = singleTermClauses(q.Text)
	}

	body["query"] = map[string]interface{}{
		"bool": map[string]interface{}{
			"should":               should,
			"minimum_should_match": 1,
			"filter":               buildFilterClauses(q.Filters),
		},
	}

	if q.FacetsRequested {
		body["aggs"] = buildFacetAggs()
	}

	return body
}

// multiTermClauses ranks: exact phrase > all terms on name fields > any term
// on type fields > name prefix wildcard.
func multiTermClauses(text string) []interface{} {
	return []interface{}{
		map[string]interface{}{
			"match_phrase": map[string]interface{}{
				"fileName": map[string]interface{}{
					"query": text,
					"boost": 4.0,
				},
			},
		},
		map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":    text,
				"fields":   nameFields,
				"operator": "and",
				"boost":    3.0,
			},
		},
		map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  text,
				"fields": typeFields,
				"boost":  2.0,
			},
		},
		map[string]interface{}{
			"wildcard": map[string]interface{}{
				"fileName.keyword": map[string]interface{}{
					"value": text + "*",
					"boost": 1.0,
				},
			},
		},
	}
}

// singleTermClauses ranks: exact name prefix > phrase prefix > fuzzy name
// match > cross-field type match > substring wildcard.
func singleTermClauses(text string) []interface{} {
	return []interface{}{
		map[string]interface{}{
			"prefix": map[string]interface{}{
				"fileName.keyword": map[string]interface{}{
					"value": text,
					"boost": 4.0,
				},
			},
		},
		map[string]interface{}{
			"match_phrase_prefix": map[string]interface{}{
				"fileName": map[string]interface{}{
					"query": text,
					"boost": 3.0,
				},
			},
		},
		map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":                text,
				"fields":               nameFields,
				"fuzziness":            "AUTO",
				"minimum_should_match": "80%",
				"boost":                2.0,
			},
		},
		map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  text,
				"fields": typeFields,
				"type":   "cross_fields",
				"boost":  1.0,
			},
		},
		map[string]interface{}{
			"wildcard": map[string]interface{}{
				"fileName.keyword": map[string]interface{}{
					"value": "*" + text + "*",
					"boost": 0.7,
				},
			},
		},
	}
}

// BuildSimplifiedQuery is the two-clause fallback issued once after the
// index rejects the full query for clause complexity.
func BuildSimplifiedQuery(q SearchQuery) map[string]interface{} {
	return map[string]interface{}{
		"from": q.Offset(),
		"size": q.PageSize,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []interface{}{
					map[string]interface{}{
						"match": map[string]interface{}{
							"fileName": map[string]interface{}{
								"query": q.Text,
								"boost": 2.0,
							},
						},
					},
					map[string]interface{}{
						"match": map[string]interface{}{
							"assetType": map[string]interface{}{
								"query": q.Text,
								"boost": 1.0,
							},
						},
					},
				},
				"minimum_should_match": 1,
				"filter":               buildFilterClauses(q.Filters),
			},
		},
	}
}

func buildFilterClauses(filters []Filter) []interface{} {
	clauses := make([]interface{}, 0, len(filters))
	for _, f := range filters {
		switch f.Op {
		case FilterEq:
			clauses = append(clauses, map[string]interface{}{
				"term": map[string]interface{}{f.Field: f.Value},
			})
		case FilterTerms:
			clauses = append(clauses, map[string]interface{}{
				"terms": map[string]interface{}{f.Field: f.Value},
			})
		case FilterRange:
			rv, ok := f.Value.(RangeValue)
			if !ok {
				continue
			}
			bounds := map[string]interface{}{}
			if rv.GTE != nil {
				bounds["gte"] = rv.GTE
			}
			if rv.LTE != nil {
				bounds["lte"] = rv.LTE
			}
			clauses = append(clauses, map[string]interface{}{
				"range": map[string]interface{}{f.Field: bounds},
			})
		}
	}
	return clauses
}

// buildFacetAggs requests all facet buckets in the same round trip as the
// primary query.
func buildFacetAggs() map[string]interface{} {
	return map[string]interface{}{
		"file_types": map[string]interface{}{
			"terms": map[string]interface{}{"field": "fileType"},
		},
		"asset_types": map[string]interface{}{
			"terms": map[string]interface{}{"field": "assetType"},
		},
		"extensions": map[string]interface{}{
			"terms": map[string]interface{}{"field": "extension"},
		},
		"size_buckets": map[string]interface{}{
			"range": map[string]interface{}{
				"field": "fileSize",
				"ranges": []interface{}{
					map[string]interface{}{"key": "small", "to": 104857600},
					map[string]interface{}{"key": "medium", "from": 104857600, "to": 1073741824},
					map[string]interface{}{"key": "large", "from": 1073741824},
				},
			},
		},
		"ingestion_months": map[string]interface{}{
			"date_histogram": map[string]interface{}{
				"field":             "ingestedAt",
				"calendar_interval": "month",
			},
		},
	}
}
