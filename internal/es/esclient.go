package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/Skotchmaster/canteen/internal/models"
	"github.com/Skotchmaster/canteen/pkg/logging"
)

const searchSize = 50

type Config struct {
	URL      string
	User     string
	Password string
	Index    string
}

func NewClient(ctx context.Context, cfg Config) (*elasticsearch.Client, error) {
	l := logging.FromContext(ctx).With("component", "es")
	l.Info("es_connecting", "url", cfg.URL)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch info: %s: %s", res.Status(), body)
	}

	l.Info("es_connected")
	return client, nil
}

// MenuIndex keeps one document per archived dish, keyed by dish id.
type MenuIndex struct {
	Client    *elasticsearch.Client
	IndexName string
}

type dishDoc struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Price       int    `json:"price"`
}

func check(res *esapi.Response, op string) error {
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("%s: %s: %s", op, res.Status(), body)
	}
	return nil
}

func (m *MenuIndex) Index(ctx context.Context, d models.Dish) error {
	body, err := json.Marshal(dishDoc{Name: d.Name, Description: d.Description, Category: string(d.Category), Price: d.Price})
	if err != nil {
		return err
	}

	res, err := m.Client.Index(m.IndexName, bytes.NewReader(body),
		m.Client.Index.WithContext(ctx),
		m.Client.Index.WithDocumentID(strconv.Itoa(d.ID)),
	)
	if err != nil {
		return fmt.Errorf("index dish %d: %w", d.ID, err)
	}
	return check(res, "index dish")
}

func (m *MenuIndex) Remove(ctx context.Context, id int) error {
	res, err := m.Client.Delete(m.IndexName, strconv.Itoa(id), m.Client.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete dish %d: %w", id, err)
	}
	if res.StatusCode == http.StatusNotFound {
		res.Body.Close()
		return nil
	}
	return check(res, "delete dish")
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search returns matching dish ids, best match first.
func (m *MenuIndex) Search(ctx context.Context, q string) ([]int, error) {
	query := map[string]any{
		"size": searchSize,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"name^3", "description"},
				"fuzziness": "AUTO",
			},
		},
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	res, err := m.Client.Search(
		m.Client.Search.WithContext(ctx),
		m.Client.Search.WithIndex(m.IndexName),
		m.Client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("search dishes: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search dishes: %s: %s", res.Status(), raw)
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	ids := make([]int, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		id, err := strconv.Atoi(h.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
