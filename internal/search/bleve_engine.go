package search

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/lang/cjk"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/pders01/newsdesk/internal/debuglog"
	"github.com/pders01/newsdesk/internal/storage"
)

// BleveEngine keeps a full-text index of the history next to the bbolt file.
type BleveEngine struct {
	store ArticleSource
	idx   bleve.Index
}

// NewBleveEngine creates or opens a Bleve index at indexPath and indexes current data.
func NewBleveEngine(store ArticleSource, indexPath string) (*BleveEngine, error) {
	if err := os.MkdirAll(filepath.Dir(indexPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	idx, err := bleve.Open(indexPath)
	if err != nil {
		idx, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("creating index: %w", err)
		}
	}

	be := &BleveEngine{store: store, idx: idx}
	if err := be.reindexAll(); err != nil {
		_ = idx.Close()
		return nil, err
	}
	return be, nil
}

// buildIndexMapping uses the CJK bigram analyzer so Japanese headlines,
// which have no spaces, still split into searchable terms.
func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = cjk.AnalyzerName

	dm := bleve.NewDocumentMapping()

	title := bleve.NewTextFieldMapping()
	title.Analyzer = cjk.AnalyzerName
	title.Store = true
	title.IncludeTermVectors = true

	desc := bleve.NewTextFieldMapping()
	desc.Analyzer = cjk.AnalyzerName
	desc.Store = true

	source := bleve.NewTextFieldMapping()
	source.Analyzer = cjk.AnalyzerName
	source.Store = true

	keyword := bleve.NewKeywordFieldMapping()
	keyword.Store = true

	dm.AddFieldMappingsAt("title", title)
	dm.AddFieldMappingsAt("description", desc)
	dm.AddFieldMappingsAt("source", source)
	dm.AddFieldMappingsAt("topic", keyword)
	dm.AddFieldMappingsAt("url", keyword)

	im.DefaultMapping = dm
	return im
}

func articleDoc(a *storage.Article) map[string]any {
	return map[string]any{
		"title":       a.Title,
		"description": a.Description,
		"source":      a.Source,
		"topic":       a.Topic,
		"url":         a.URL,
	}
}

func (b *BleveEngine) reindexAll() error {
	arts, err := b.store.GetArticles(0)
	if err != nil {
		return err
	}

	batch := b.idx.NewBatch()
	for _, a := range arts {
		if err := batch.Index(docIDForArticle(a.ID), articleDoc(a)); err != nil {
			return err
		}
	}
	return b.idx.Batch(batch)
}

func (b *BleveEngine) Search(query string, limit int) ([]*Result, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return []*Result{}, nil
	}
	if limit <= 0 {
		limit = 50
	}

	var qs []bleveQuery.Query
	for _, tok := range tokenize(query) {
		qt := bleve.NewMatchQuery(tok)
		qt.SetField("title")
		qt.SetBoost(4.0)
		qs = append(qs, qt)

		qtp := bleve.NewPrefixQuery(tok)
		qtp.SetField("title")
		qtp.SetBoost(3.5)
		qs = append(qs, qtp)

		qd := bleve.NewMatchQuery(tok)
		qd.SetField("description")
		qd.SetBoost(2.0)
		qs = append(qs, qd)

		qsrc := bleve.NewMatchQuery(tok)
		qsrc.SetField("source")
		qsrc.SetBoost(0.5)
		qs = append(qs, qsrc)
	}
	if len(qs) == 0 {
		return []*Result{}, nil
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(qs...), limit, 0, false)
	req.Fields = []string{"title", "description"}
	res, err := b.idx.Search(req)
	if err != nil {
		return nil, err
	}

	out := make([]*Result, 0, len(res.Hits))
	for _, h := range res.Hits {
		id := strings.TrimPrefix(h.ID, "article:")
		article, err := b.store.GetArticle(id)
		if err != nil {
			// Indexed but no longer stored; rebuild from stored fields.
			debuglog.Debugf("search: hit %s missing from store: %v", id, err)
			article = &storage.Article{ID: id}
			if t, ok := h.Fields["title"].(string); ok {
				article.Title = t
			}
			if d, ok := h.Fields["description"].(string); ok {
				article.Description = d
			}
		}
		out = append(out, &Result{
			Article: article,
			Score:   h.Score,
			Matches: []Match{{Field: "title", Text: article.Title, Weight: h.Score}},
		})
	}
	return out, nil
}

// OnArticlesSaved indexes the provided articles.
func (b *BleveEngine) OnArticlesSaved(articles []*storage.Article) {
	if len(articles) == 0 {
		return
	}
	batch := b.idx.NewBatch()
	for _, a := range articles {
		_ = batch.Index(docIDForArticle(a.ID), articleDoc(a))
	}
	if err := b.idx.Batch(batch); err != nil {
		debuglog.Warnf("search: indexing %d articles: %v", len(articles), err)
	}
}

// DocCount reports total documents in the index.
func (b *BleveEngine) DocCount() (int, error) {
	n, err := b.idx.DocCount()
	return int(n), err
}

func (b *BleveEngine) Close() error {
	return b.idx.Close()
}

func docIDForArticle(artID string) string { return "article:" + artID }
