package service

import (
	"context"
	"fmt"
	"path/filepath"

	"factorio/wiki/internal/client"
	"factorio/wiki/internal/domain"
	"factorio/wiki/internal/repository"

	log "github.com/sirupsen/logrus"
)

// Result summarizes one build run.
type Result struct {
	Catalog       domain.Catalog
	Dirty         bool
	Scraped       bool // index page was fetched because no cache existed
	Downloads     int
	RecipeFetches int
	RecipesAdded  int
}

type Service struct {
	store    repository.ItemStore
	client   client.WikiClient
	mirror   repository.ItemRepository
	imageDir string
	logger   log.FieldLogger
}

// NewService wires the catalog builder. mirror may be nil.
func NewService(
	store repository.ItemStore,
	client client.WikiClient,
	mirror repository.ItemRepository,
	imageDir string,
	logger log.FieldLogger,
) *Service {
	return &Service{
		store:    store,
		client:   client,
		mirror:   mirror,
		imageDir: imageDir,
		logger:   logger,
	}
}

// Init returns the catalog. In read-only mode it only consults the cache and
// an absent cache yields an empty catalog; otherwise it runs a full build
// under the cache lock.
func (s *Service) Init(ctx context.Context, readonly bool) (domain.Catalog, error) {
	if readonly {
		catalog, ok, err := s.store.Load()
		if err != nil {
			return nil, err
		}
		if !ok {
			s.logger.Warn("No item cache found, catalog is empty")
			return domain.Catalog{}, nil
		}
		return catalog, nil
	}

	release, err := s.store.Lock()
	if err != nil {
		return nil, err
	}
	defer release()

	result, err := s.Build(ctx)
	if err != nil {
		return nil, err
	}
	return result.Catalog, nil
}

// Build resolves the item list, fills in missing images and recipes and
// saves the cache once if anything changed. Any fetch error aborts the run
// before the save.
func (s *Service) Build(ctx context.Context) (*Result, error) {
	result := &Result{}

	if err := s.resolveItems(ctx, result); err != nil {
		return nil, err
	}

	if err := s.ensureImages(ctx, result); err != nil {
		return nil, err
	}

	if err := s.ensureRecipes(ctx, result); err != nil {
		return nil, err
	}

	if !result.Dirty {
		s.logger.Info("✅ Catalog up to date, nothing to save")
		return result, nil
	}

	if err := s.store.Save(result.Catalog); err != nil {
		return nil, fmt.Errorf("failed to save catalog: %w", err)
	}

	if s.mirror != nil {
		if err := s.mirror.SaveItems(ctx, result.Catalog); err != nil {
			return nil, fmt.Errorf("failed to mirror catalog: %w", err)
		}
		s.logger.Infof("✅ Mirrored %d items to database", len(result.Catalog))
	}

	s.logger.Infof("✅ Build finished: %d items, %d images downloaded, %d recipes added",
		len(result.Catalog), result.Downloads, result.RecipesAdded)
	return result, nil
}

func (s *Service) resolveItems(ctx context.Context, result *Result) error {
	catalog, ok, err := s.store.Load()
	if err != nil {
		return err
	}
	if ok {
		s.logger.Infof("📦 Loaded %d items from cache", len(catalog))
		result.Catalog = catalog
		return nil
	}

	s.logger.Info("🔄 No cache found, scraping item index")

	doc, err := s.client.FetchPage(ctx, s.client.IndexURL())
	if err != nil {
		return fmt.Errorf("failed to fetch item index: %w", err)
	}

	result.Catalog = client.ExtractIndex(doc)
	result.Scraped = true
	result.Dirty = true

	s.logger.Infof("✅ Found %d items on the index page", len(result.Catalog))
	return nil
}

func (s *Service) ensureImages(ctx context.Context, result *Result) error {
	for _, item := range result.Catalog {
		localName := item.Img.LocalName()
		if localName == "" {
			s.logger.WithField("item", item.Name).Warn("⚠️ Item has no image path, skipping")
			continue
		}

		destination := filepath.Join(s.imageDir, localName)
		downloaded, err := s.client.EnsureAsset(ctx, s.client.AssetURL(item.Img.PagePath), destination)
		if err != nil {
			return fmt.Errorf("failed to download image for %s: %w", item.Name, err)
		}
		if downloaded {
			result.Downloads++
			s.logger.WithField("item", item.Name).Debugf("Downloaded image %s", localName)
		}

		if item.Img.LocalPath != localName {
			item.Img.LocalPath = localName
			result.Dirty = true
		}
	}

	return nil
}

func (s *Service) ensureRecipes(ctx context.Context, result *Result) error {
	for _, item := range result.Catalog {
		if item.HasRecipe() {
			continue
		}

		doc, err := s.client.FetchPage(ctx, s.client.ItemURL(item.Ref))
		if err != nil {
			return fmt.Errorf("failed to fetch details for %s: %w", item.Name, err)
		}
		result.RecipeFetches++

		recipe, ok := client.ExtractRecipe(doc)
		if !ok {
			s.logger.WithField("item", item.Name).Debug("No single recipe on detail page")
			continue
		}

		item.Recipe = recipe
		result.RecipesAdded++
		result.Dirty = true
	}

	return nil
}
