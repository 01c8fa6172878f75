package db

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// seedArea is a district with an approximate centre point.
type seedArea struct {
	Province, City, District string
	Lat, Lng                 float64
}

var seedAreas = []seedArea{
	{"DKI Jakarta", "Jakarta Selatan", "Kebayoran Baru", -6.2441, 106.8006},
	{"DKI Jakarta", "Jakarta Selatan", "Tebet", -6.2262, 106.8555},
	{"DKI Jakarta", "Jakarta Pusat", "Menteng", -6.1963, 106.8326},
	{"DKI Jakarta", "Jakarta Barat", "Grogol Petamburan", -6.1664, 106.7901},
	{"DKI Jakarta", "Jakarta Timur", "Jatinegara", -6.2250, 106.8701},
	{"DKI Jakarta", "Jakarta Utara", "Kelapa Gading", -6.1588, 106.9056},
	{"Jawa Barat", "Depok", "Beji", -6.3713, 106.8196},
	{"Banten", "Tangerang Selatan", "Serpong", -6.3162, 106.6660},
}

type seedProduct struct {
	Name, Category string
	Value          int64
}

var seedProducts = []seedProduct{
	{"Sepeda lipat Polygon", "sports", 2_500_000},
	{"Raket badminton Yonex", "sports", 650_000},
	{"Kamera analog Canon AE-1", "electronics", 1_800_000},
	{"Headphone Sony WH-1000XM3", "electronics", 2_200_000},
	{"Nintendo Switch Lite", "electronics", 2_700_000},
	{"Gitar akustik Yamaha F310", "music", 1_300_000},
	{"Keyboard Casio CT-S200", "music", 1_100_000},
	{"Tenda dome 4 orang", "outdoor", 700_000},
	{"Carrier Eiger 45L", "outdoor", 850_000},
	{"Rak buku kayu jati", "furniture", 900_000},
	{"Kursi gaming", "furniture", 1_500_000},
	{"Novel Laskar Pelangi set", "books", 150_000},
	{"Komik Doraemon 1-20", "books", 400_000},
	{"Jaket denim Levi's", "fashion", 450_000},
	{"Sneakers Compass", "fashion", 600_000},
	{"Blender Philips", "home", 500_000},
}

var seedConditions = []Condition{ConditionNew, ConditionLikeNew, ConditionGood, ConditionGood, ConditionFair, ConditionWorn}

// tables in delete order
var seedTables = []string{"messages", "conversations", "matches", "wishlist_entries", "swipe_decisions", "items", "users"}

// SeedTestData resets the database and populates it with demo data.
//
// Behavior:
//  1. Clears every barter table.
//  2. Creates 20 users spread over Jabodetabek with hashed passwords.
//  3. Gives each user 2-4 items from a fixed catalog.
//  4. Records ~10 decisions per user (60% right, 15% up) on random offered
//     items. Right swipes are one-sided; matches appear once the other side
//     swipes back through the API.
//
// Compatible with both MySQL and SQLite.
func SeedTestData(database *gorm.DB, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	for _, table := range seedTables {
		if err := database.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	switch database.Dialector.Name() {
	case "mysql":
		for _, table := range seedTables {
			database.Exec("ALTER TABLE " + table + " AUTO_INCREMENT = 1")
		}
	case "sqlite":
		database.Exec("DELETE FROM sqlite_sequence")
	}
	log.Info("cleared existing data")

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	users := make([]User, 0, 20)
	for i := 1; i <= 20; i++ {
		area := seedAreas[r.Intn(len(seedAreas))]
		lat, lng := jitter(r, area.Lat), jitter(r, area.Lng)
		users = append(users, User{
			Username:     fmt.Sprintf("user%d", i),
			Email:        fmt.Sprintf("user%d@example.com", i),
			PasswordHash: string(hash),
			Active:       true,
			Province:     area.Province,
			City:         area.City,
			District:     area.District,
			Latitude:     &lat,
			Longitude:    &lng,
		})
	}
	if err := database.Create(&users).Error; err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	var items []Item
	now := time.Now().UTC()
	for _, u := range users {
		n := 2 + r.Intn(3)
		for j := 0; j < n; j++ {
			p := seedProducts[r.Intn(len(seedProducts))]
			lat, lng := jitter(r, *u.Latitude), jitter(r, *u.Longitude)
			// +/- 20% around the catalog value, rounded to Rp 10.000
			value := p.Value * int64(80+r.Intn(41)) / 100 / 10_000 * 10_000
			it := Item{
				OwnerID:        u.ID,
				Name:           p.Name,
				Description:    fmt.Sprintf("%s milik %s, siap barter.", p.Name, u.Username),
				Category:       p.Category,
				Condition:      seedConditions[r.Intn(len(seedConditions))],
				EstimatedValue: value,
				IsActive:       true,
				Province:       u.Province,
				City:           u.City,
				District:       u.District,
				Latitude:       &lat,
				Longitude:      &lng,
				CreatedAt:      now.Add(-time.Duration(r.Intn(30*24)) * time.Hour),
			}
			if r.Intn(4) == 0 {
				topUp := value / 10
				it.TopUpValue = &topUp
			}
			items = append(items, it)
		}
	}
	if err := database.Create(&items).Error; err != nil {
		return fmt.Errorf("failed to seed items: %w", err)
	}
	log.Info("seeded catalog", "users", len(users), "items", len(items))

	byOwner := make(map[uint64][]Item)
	for _, it := range items {
		byOwner[it.OwnerID] = append(byOwner[it.OwnerID], it)
	}

	decisions, wishes := 0, 0
	for _, u := range users {
		mine := byOwner[u.ID]
		for j := 0; j < 10; j++ {
			offered := mine[r.Intn(len(mine))]
			candidate := items[r.Intn(len(items))]
			if candidate.OwnerID == u.ID {
				continue
			}

			dir := DirectionLeft
			switch roll := r.Intn(100); {
			case roll < 60:
				dir = DirectionRight
			case roll < 75:
				dir = DirectionUp
			}

			res := database.Clauses(clause.OnConflict{DoNothing: true}).Create(&SwipeDecision{
				SwiperID:        u.ID,
				OfferedItemID:   offered.ID,
				CandidateItemID: candidate.ID,
				Direction:       dir,
			})
			if res.Error != nil {
				return fmt.Errorf("failed to seed decision: %w", res.Error)
			}
			decisions += int(res.RowsAffected)

			if dir == DirectionUp {
				res := database.Clauses(clause.OnConflict{DoNothing: true}).Create(&WishlistEntry{UserID: u.ID, ItemID: candidate.ID})
				if res.Error != nil {
					return fmt.Errorf("failed to seed wishlist: %w", res.Error)
				}
				wishes += int(res.RowsAffected)
			}
		}
	}
	log.Info("seeded decisions", "decisions", decisions, "wishlist", wishes)

	return nil
}

// jitter moves a coordinate by up to ~1.5 km.
func jitter(r *rand.Rand, v float64) float64 {
	return v + (r.Float64()-0.5)*0.027
}
