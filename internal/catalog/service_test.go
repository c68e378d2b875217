package catalog_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internal "github.com/devrahi999/ihntopup/internal"
	"github.com/devrahi999/ihntopup/internal/catalog"
	model "github.com/devrahi999/ihntopup/internal/core/datamodel/catalog"
)

func TestCatalogService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Catalog Service Suite")
}

type mockCatalogRepo struct {
	categories map[int64]*model.Category
	packs      map[int64]*model.DiamondPack
	cards      map[int64]*model.TopupCard
	banners    map[int64]*model.Banner
	nextID     int64
}

func newMockCatalogRepo() *mockCatalogRepo {
	return &mockCatalogRepo{
		categories: make(map[int64]*model.Category),
		packs:      make(map[int64]*model.DiamondPack),
		cards:      make(map[int64]*model.TopupCard),
		banners:    make(map[int64]*model.Banner),
		nextID:     1,
	}
}

func (m *mockCatalogRepo) id() int64 {
	id := m.nextID
	m.nextID++
	return id
}

func (m *mockCatalogRepo) ListCategories(ctx context.Context, activeOnly bool) ([]*model.Category, error) {
	var out []*model.Category
	for _, c := range m.categories {
		if !activeOnly || c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCatalogRepo) CreateCategory(ctx context.Context, c *model.Category) error {
	c.ID = m.id()
	m.categories[c.ID] = c
	return nil
}

func (m *mockCatalogRepo) UpdateCategory(ctx context.Context, c *model.Category) error {
	m.categories[c.ID] = c
	return nil
}

func (m *mockCatalogRepo) DeleteCategory(ctx context.Context, id int64) error {
	delete(m.categories, id)
	return nil
}

func (m *mockCatalogRepo) ListPacks(ctx context.Context, categoryID *int64, activeOnly bool) ([]*model.DiamondPack, error) {
	var out []*model.DiamondPack
	for _, p := range m.packs {
		if activeOnly && !p.IsActive {
			continue
		}
		if categoryID != nil && (p.CategoryID == nil || *p.CategoryID != *categoryID) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *mockCatalogRepo) GetPack(ctx context.Context, id int64) (*model.DiamondPack, error) {
	p, ok := m.packs[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return p, nil
}

func (m *mockCatalogRepo) CreatePack(ctx context.Context, p *model.DiamondPack) error {
	p.ID = m.id()
	m.packs[p.ID] = p
	return nil
}

func (m *mockCatalogRepo) UpdatePack(ctx context.Context, p *model.DiamondPack) error {
	m.packs[p.ID] = p
	return nil
}

func (m *mockCatalogRepo) DeletePack(ctx context.Context, id int64) error {
	delete(m.packs, id)
	return nil
}

func (m *mockCatalogRepo) ListCards(ctx context.Context, activeOnly bool) ([]*model.TopupCard, error) {
	var out []*model.TopupCard
	for _, c := range m.cards {
		if !activeOnly || c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCatalogRepo) GetCard(ctx context.Context, id int64) (*model.TopupCard, error) {
	c, ok := m.cards[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return c, nil
}

func (m *mockCatalogRepo) CreateCard(ctx context.Context, c *model.TopupCard) error {
	c.ID = m.id()
	m.cards[c.ID] = c
	return nil
}

func (m *mockCatalogRepo) UpdateCard(ctx context.Context, c *model.TopupCard) error {
	m.cards[c.ID] = c
	return nil
}

func (m *mockCatalogRepo) DeleteCard(ctx context.Context, id int64) error {
	delete(m.cards, id)
	return nil
}

func (m *mockCatalogRepo) ListBanners(ctx context.Context, activeOnly bool) ([]*model.Banner, error) {
	var out []*model.Banner
	for _, b := range m.banners {
		if !activeOnly || b.IsActive {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockCatalogRepo) CreateBanner(ctx context.Context, b *model.Banner) error {
	b.ID = m.id()
	m.banners[b.ID] = b
	return nil
}

func (m *mockCatalogRepo) DeleteBanner(ctx context.Context, id int64) error {
	delete(m.banners, id)
	return nil
}

var _ = Describe("Catalog Service", func() {
	var (
		repo    *mockCatalogRepo
		service *catalog.Service
		ctx     context.Context
	)

	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	BeforeEach(func() {
		repo = newMockCatalogRepo()
		service = catalog.NewService(repo, testLogger)
		ctx = context.Background()
	})

	Describe("Categories", func() {
		It("slugifies the name on create", func() {
			c := &model.Category{Name: "Free Fire", IsActive: true}
			Expect(service.CreateCategory(ctx, c)).To(Succeed())
			Expect(c.Slug).To(Equal("free-fire"))
		})

		It("keeps an explicit slug", func() {
			c := &model.Category{Name: "Free Fire", Slug: "ff", IsActive: true}
			Expect(service.CreateCategory(ctx, c)).To(Succeed())
			Expect(c.Slug).To(Equal("ff"))
		})

		It("rejects a blank name", func() {
			err := service.CreateCategory(ctx, &model.Category{Name: "  "})
			Expect(err).To(HaveOccurred())
		})

		It("hides inactive categories from the public listing", func() {
			Expect(service.CreateCategory(ctx, &model.Category{Name: "Active", IsActive: true})).To(Succeed())
			Expect(service.CreateCategory(ctx, &model.Category{Name: "Retired", IsActive: false})).To(Succeed())

			public, err := service.Categories(ctx, false)
			Expect(err).ToNot(HaveOccurred())
			Expect(public).To(HaveLen(1))

			all, err := service.Categories(ctx, true)
			Expect(err).ToNot(HaveOccurred())
			Expect(all).To(HaveLen(2))
		})
	})

	Describe("Packs", func() {
		It("validates packs on create", func() {
			Expect(service.CreatePack(ctx, &model.DiamondPack{Name: "", Diamonds: 100, Price: 85})).ToNot(Succeed())
			Expect(service.CreatePack(ctx, &model.DiamondPack{Name: "x", Diamonds: 0, Price: 85})).ToNot(Succeed())
			Expect(service.CreatePack(ctx, &model.DiamondPack{Name: "x", Diamonds: 100, Price: 0})).ToNot(Succeed())
			Expect(service.CreatePack(ctx, &model.DiamondPack{Name: "100 Diamonds", Diamonds: 100, Price: 85, IsActive: true})).To(Succeed())
		})

		It("maps a missing pack to the domain error", func() {
			_, err := service.GetPack(ctx, 999)
			Expect(err).To(Equal(internal.ErrPackNotFound))
		})

		It("filters packs by category", func() {
			catID := int64(1)
			otherID := int64(2)
			Expect(service.CreatePack(ctx, &model.DiamondPack{Name: "a", Diamonds: 25, Price: 25, CategoryID: &catID, IsActive: true})).To(Succeed())
			Expect(service.CreatePack(ctx, &model.DiamondPack{Name: "b", Diamonds: 25, Price: 25, CategoryID: &otherID, IsActive: true})).To(Succeed())

			packs, err := service.Packs(ctx, &catID, false)
			Expect(err).ToNot(HaveOccurred())
			Expect(packs).To(HaveLen(1))
		})
	})

	Describe("Cards", func() {
		It("requires a name and a positive price", func() {
			Expect(service.CreateCard(ctx, &model.TopupCard{Name: "", Price: 165})).ToNot(Succeed())
			Expect(service.CreateCard(ctx, &model.TopupCard{Name: "Weekly", Price: 0})).ToNot(Succeed())
			Expect(service.CreateCard(ctx, &model.TopupCard{Name: "Weekly", Price: 165, IsActive: true})).To(Succeed())
		})

		It("maps a missing card to the domain error", func() {
			_, err := service.GetCard(ctx, 999)
			Expect(err).To(Equal(internal.ErrCardNotFound))
		})
	})

	Describe("Banners", func() {
		It("requires an image URL", func() {
			Expect(service.CreateBanner(ctx, &model.Banner{})).ToNot(Succeed())
			Expect(service.CreateBanner(ctx, &model.Banner{ImageURL: "/banners/sale.png", IsActive: true})).To(Succeed())
		})

		It("lists active banners only", func() {
			Expect(service.CreateBanner(ctx, &model.Banner{ImageURL: "/a.png", IsActive: true})).To(Succeed())
			Expect(service.CreateBanner(ctx, &model.Banner{ImageURL: "/b.png", IsActive: false})).To(Succeed())

			banners, err := service.Banners(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(banners).To(HaveLen(1))
		})
	})
})
