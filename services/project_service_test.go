package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/freelance-market/models"
)

// newTestDB -> SQLite in-memory dengan semua model termigrasi
func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Bid{},
		&models.Review{},
		&models.Notification{},
		&models.Payment{},
		&models.ChatMessage{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

type marketplaceFixture struct {
	db       *gorm.DB
	projects *ProjectService
	bids     *BidService
	payments *PaymentService

	client      models.User
	freelancer1 models.User
	freelancer2 models.User
	project     models.Project
	bid1        models.Bid
	bid2        models.Bid
}

// newMarketplaceFixture menyiapkan project published dengan dua bid pending.
func newMarketplaceFixture(t *testing.T) *marketplaceFixture {
	db := newTestDB(t)
	notifier := NewNotificationService(db)
	payments := NewPaymentService(db, nil, notifier)

	f := &marketplaceFixture{
		db:       db,
		projects: NewProjectService(db, notifier, payments),
		bids:     NewBidService(db, notifier),
		payments: payments,
	}

	f.client = models.User{Name: "Client", Email: "client@example.com", Password: "x", Role: models.RoleClient}
	f.freelancer1 = models.User{Name: "Freelancer One", Email: "f1@example.com", Password: "x", Role: models.RoleFreelancer}
	f.freelancer2 = models.User{Name: "Freelancer Two", Email: "f2@example.com", Password: "x", Role: models.RoleFreelancer}
	db.Create(&f.client)
	db.Create(&f.freelancer1)
	db.Create(&f.freelancer2)

	f.project = models.Project{
		ClientID: f.client.ID,
		Title:    "Landing page",
		Budget:   5000000,
		Status:   models.ProjectPublished,
	}
	db.Create(&f.project)

	f.bid1 = models.Bid{ProjectID: f.project.ID, FreelancerID: f.freelancer1.ID, Amount: 4500000, DeliveryDays: 14, Status: models.BidPending, Active: models.LiveBidFlag()}
	f.bid2 = models.Bid{ProjectID: f.project.ID, FreelancerID: f.freelancer2.ID, Amount: 4000000, DeliveryDays: 20, Status: models.BidPending, Active: models.LiveBidFlag()}
	db.Create(&f.bid1)
	db.Create(&f.bid2)

	return f
}

func (f *marketplaceFixture) reload(t *testing.T) {
	if err := f.db.First(&f.project, f.project.ID).Error; err != nil {
		t.Fatalf("reload project: %v", err)
	}
	if err := f.db.First(&f.bid1, f.bid1.ID).Error; err != nil {
		t.Fatalf("reload bid1: %v", err)
	}
	if err := f.db.First(&f.bid2, f.bid2.ID).Error; err != nil {
		t.Fatalf("reload bid2: %v", err)
	}
}

func TestAcceptBidHappyPath(t *testing.T) {
	f := newMarketplaceFixture(t)

	result, err := f.projects.AcceptBid(f.project.ID, f.bid1.ID, f.client.ID)
	assert.NoError(t, err)

	f.reload(t)

	// Satu pemenang, sisanya rejected
	assert.Equal(t, models.BidAccepted, f.bid1.Status)
	assert.NotNil(t, f.bid1.AcceptedAt)
	assert.Equal(t, models.BidRejected, f.bid2.Status)

	assert.Equal(t, models.ProjectInProgress, f.project.Status)
	assert.NotNil(t, f.project.FreelancerID)
	assert.Equal(t, f.freelancer1.ID, *f.project.FreelancerID)
	assert.NotNil(t, f.project.AcceptedBidID)
	assert.Equal(t, f.bid1.ID, *f.project.AcceptedBidID)

	// Notifikasi bid_accepted + project_started + chat seed
	assert.Len(t, result.SideEffects, 3)
	for _, effect := range result.SideEffects {
		assert.True(t, effect.OK, "side effect %s failed: %s", effect.Kind, effect.Error)
	}

	var notifCount int64
	f.db.Model(&models.Notification{}).Count(&notifCount)
	assert.EqualValues(t, 2, notifCount)

	var chatCount int64
	f.db.Model(&models.ChatMessage{}).Where("project_id = ?", f.project.ID).Count(&chatCount)
	assert.EqualValues(t, 1, chatCount)
}

func TestAcceptBidLeavesWithdrawnBidsAlone(t *testing.T) {
	f := newMarketplaceFixture(t)

	_, err := f.bids.WithdrawBid(f.bid2.ID, f.freelancer2.ID)
	assert.NoError(t, err)

	_, err = f.projects.AcceptBid(f.project.ID, f.bid1.ID, f.client.ID)
	assert.NoError(t, err)

	f.reload(t)
	assert.Equal(t, models.BidAccepted, f.bid1.Status)
	assert.Equal(t, models.BidWithdrawn, f.bid2.Status)
}

func TestAcceptBidForbiddenForNonOwner(t *testing.T) {
	f := newMarketplaceFixture(t)

	_, err := f.projects.AcceptBid(f.project.ID, f.bid1.ID, f.freelancer2.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	// Tidak ada mutasi sama sekali
	f.reload(t)
	assert.Equal(t, models.ProjectPublished, f.project.Status)
	assert.Nil(t, f.project.FreelancerID)
	assert.Nil(t, f.project.AcceptedBidID)
	assert.Equal(t, models.BidPending, f.bid1.Status)
	assert.Equal(t, models.BidPending, f.bid2.Status)

	var notifCount int64
	f.db.Model(&models.Notification{}).Count(&notifCount)
	assert.EqualValues(t, 0, notifCount)
}

func TestAcceptBidSecondCallConflicts(t *testing.T) {
	f := newMarketplaceFixture(t)

	_, err := f.projects.AcceptBid(f.project.ID, f.bid1.ID, f.client.ID)
	assert.NoError(t, err)

	// Percobaan kedua gagal di precondition dan tidak mengubah apa pun
	_, err = f.projects.AcceptBid(f.project.ID, f.bid2.ID, f.client.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	f.reload(t)
	assert.Equal(t, models.BidAccepted, f.bid1.Status)
	assert.Equal(t, models.BidRejected, f.bid2.Status)
	assert.Equal(t, models.ProjectInProgress, f.project.Status)
	assert.Equal(t, f.bid1.ID, *f.project.AcceptedBidID)
}

func TestAcceptBidUnknownProjectOrBid(t *testing.T) {
	f := newMarketplaceFixture(t)

	_, err := f.projects.AcceptBid(9999, f.bid1.ID, f.client.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.projects.AcceptBid(f.project.ID, 9999, f.client.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProjectStatusNeverRegresses(t *testing.T) {
	f := newMarketplaceFixture(t)

	_, err := f.projects.AcceptBid(f.project.ID, f.bid1.ID, f.client.ID)
	assert.NoError(t, err)

	// Publish dan cancel ditolak setelah in_progress
	_, err = f.projects.PublishProject(f.project.ID, f.client.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = f.projects.CancelProject(f.project.ID, f.client.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	f.reload(t)
	assert.Equal(t, models.ProjectInProgress, f.project.Status)
}

func TestCompleteProjectWithReview(t *testing.T) {
	f := newMarketplaceFixture(t)

	_, err := f.projects.AcceptBid(f.project.ID, f.bid1.ID, f.client.ID)
	assert.NoError(t, err)

	rating := 5
	reviewText := "Great work"
	result, err := f.projects.CompleteProject(f.project.ID, f.client.ID, nil, &rating, &reviewText)
	assert.NoError(t, err)
	assert.NotNil(t, result.Review)
	assert.Equal(t, 5, result.Review.Rating)

	f.reload(t)
	assert.Equal(t, models.ProjectCompleted, f.project.Status)
	assert.NotNil(t, f.project.CompletedAt)
	// finalAmount default ke budget
	assert.Equal(t, f.project.Budget, f.project.FinalAmount)

	var reviewCount int64
	f.db.Model(&models.Review{}).Where("freelancer_id = ?", f.freelancer1.ID).Count(&reviewCount)
	assert.EqualValues(t, 1, reviewCount)

	var freelancer models.User
	f.db.First(&freelancer, f.freelancer1.ID)
	assert.Equal(t, 5.0, freelancer.Rating)
	assert.Equal(t, 1, freelancer.RatingCount)
	assert.Equal(t, 1, freelancer.CompletedProjects)
	assert.Equal(t, f.project.Budget, freelancer.TotalEarnings)
}

func TestCompleteProjectAveragesRatings(t *testing.T) {
	f := newMarketplaceFixture(t)

	_, err := f.projects.AcceptBid(f.project.ID, f.bid1.ID, f.client.ID)
	assert.NoError(t, err)

	// Review lama dari project lain
	f.db.Create(&models.Review{ProjectID: 777, ClientID: f.client.ID, FreelancerID: f.freelancer1.ID, Rating: 3, Comment: "ok"})

	rating := 5
	reviewText := "Great work"
	_, err = f.projects.CompleteProject(f.project.ID, f.client.ID, nil, &rating, &reviewText)
	assert.NoError(t, err)

	var freelancer models.User
	f.db.First(&freelancer, f.freelancer1.ID)
	assert.Equal(t, 4.0, freelancer.Rating)
	assert.Equal(t, 2, freelancer.RatingCount)
}

func TestCompleteProjectGuards(t *testing.T) {
	f := newMarketplaceFixture(t)

	// Belum in_progress
	_, err := f.projects.CompleteProject(f.project.ID, f.client.ID, nil, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = f.projects.AcceptBid(f.project.ID, f.bid1.ID, f.client.ID)
	assert.NoError(t, err)

	// Bukan pemilik
	_, err = f.projects.CompleteProject(f.project.ID, f.freelancer1.ID, nil, nil, nil)
	assert.ErrorIs(t, err, ErrForbidden)

	// Rating di luar rentang
	badRating := 7
	text := "x"
	_, err = f.projects.CompleteProject(f.project.ID, f.client.ID, nil, &badRating, &text)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCompleteProjectWithFinalAmount(t *testing.T) {
	f := newMarketplaceFixture(t)

	_, err := f.projects.AcceptBid(f.project.ID, f.bid1.ID, f.client.ID)
	assert.NoError(t, err)

	finalAmount := 4800000.0
	result, err := f.projects.CompleteProject(f.project.ID, f.client.ID, &finalAmount, nil, nil)
	assert.NoError(t, err)
	assert.Nil(t, result.Review)
	assert.Equal(t, finalAmount, result.Project.FinalAmount)

	var freelancer models.User
	f.db.First(&freelancer, f.freelancer1.ID)
	assert.Equal(t, finalAmount, freelancer.TotalEarnings)
	// Tanpa rating+review tidak ada review yang dibuat
	var reviewCount int64
	f.db.Model(&models.Review{}).Count(&reviewCount)
	assert.EqualValues(t, 0, reviewCount)
}

func TestCancelProjectBeforeStart(t *testing.T) {
	f := newMarketplaceFixture(t)

	project, err := f.projects.CancelProject(f.project.ID, f.client.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.ProjectCancelled, project.Status)
}
