package database

import (
	"context"

	"yemenflix/src/auth"
	admin "yemenflix/src/modules/admin/models"
	content "yemenflix/src/modules/content/models"
	enhanced "yemenflix/src/modules/enhanced/models"
	users "yemenflix/src/modules/users/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var defaultSettings = []admin.SiteSetting{
	{Key: "site_name", Value: "AK.SV - الموقع اليمني للأفلام والمسلسلات", Type: "string", Category: "general"},
	{Key: "site_description", Value: "موقع يمني لمشاهدة وتحميل الأفلام والمسلسلات العربية والأجنبية", Type: "string", Category: "general"},
	{Key: "site_logo", Value: "/assets/logo.png", Type: "string", Category: "appearance"},
	{Key: "site_theme", Value: "dark", Type: "string", Category: "appearance"},
	{Key: "enable_registration", Value: "true", Type: "boolean", Category: "general"},
	{Key: "enable_comments", Value: "true", Type: "boolean", Category: "general"},
	{Key: "enable_reviews", Value: "true", Type: "boolean", Category: "general"},
	{Key: "facebook_url", Value: "", Type: "string", Category: "social"},
	{Key: "twitter_url", Value: "", Type: "string", Category: "social"},
	{Key: "youtube_url", Value: "", Type: "string", Category: "social"},
	{Key: "telegram_url", Value: "", Type: "string", Category: "social"},
	{Key: "content_per_page", Value: "24", Type: "number", Category: "general"},
	{Key: "max_upload_size", Value: "10485760", Type: "number", Category: "advanced"},
	{Key: "cache_duration", Value: "3600", Type: "number", Category: "advanced"},
	{Key: "maintenance_mode", Value: "false", Type: "boolean", Category: "advanced"},
}

var defaultCategories = []content.Category{
	{Name: "Arabic", NameArabic: "عربي", Icon: "globe"},
	{Name: "Foreign", NameArabic: "أجنبي", Icon: "world"},
	{Name: "Classic", NameArabic: "كلاسيكي", Icon: "clock"},
	{Name: "Latest", NameArabic: "أحدث", Icon: "star"},
	{Name: "Popular", NameArabic: "شائع", Icon: "trending-up"},
	{Name: "Featured", NameArabic: "مميز", Icon: "award"},
	{Name: "Kids", NameArabic: "أطفال", Icon: "baby"},
	{Name: "Documentary", NameArabic: "وثائقي", Icon: "file-text"},
	{Name: "Religious", NameArabic: "ديني", Icon: "book"},
	{Name: "Educational", NameArabic: "تعليمي", Icon: "graduation-cap"},
}

var defaultGenres = []content.Genre{
	{Name: "Action", NameArabic: "أكشن", Color: "#ff4757"},
	{Name: "Comedy", NameArabic: "كوميديا", Color: "#ffa502"},
	{Name: "Drama", NameArabic: "دراما", Color: "#3742fa"},
	{Name: "Horror", NameArabic: "رعب", Color: "#2c2c54"},
	{Name: "Romance", NameArabic: "رومانسي", Color: "#ff3838"},
	{Name: "Thriller", NameArabic: "إثارة", Color: "#8b1538"},
	{Name: "Adventure", NameArabic: "مغامرة", Color: "#79c13a"},
	{Name: "Fantasy", NameArabic: "خيال علمي", Color: "#7d5fff"},
	{Name: "Crime", NameArabic: "جريمة", Color: "#40407a"},
	{Name: "Mystery", NameArabic: "غموض", Color: "#2c2c54"},
	{Name: "War", NameArabic: "حرب", Color: "#8b5a3c"},
	{Name: "Historical", NameArabic: "تاريخي", Color: "#d4af37"},
	{Name: "Musical", NameArabic: "موسيقي", Color: "#ff6b6b"},
	{Name: "Sport", NameArabic: "رياضي", Color: "#4b6584"},
	{Name: "Biography", NameArabic: "سيرة ذاتية", Color: "#596275"},
}

var defaultPeople = []enhanced.CastMember{
	{Name: "Ahmed Helmy", NameArabic: "أحمد حلمي", Role: "actor", Nationality: "مصر"},
	{Name: "Adel Imam", NameArabic: "عادل إمام", Role: "actor", Nationality: "مصر"},
	{Name: "Yousra", NameArabic: "يسرا", Role: "actor", Nationality: "مصر"},
	{Name: "Sherif Arafa", NameArabic: "شريف عرفة", Role: "director", Nationality: "مصر"},
	{Name: "Youssef Chahine", NameArabic: "يوسف شاهين", Role: "director", Nationality: "مصر"},
	{Name: "Nour El Sherif", NameArabic: "نور الشريف", Role: "actor", Nationality: "مصر"},
	{Name: "Mahmoud Abdel Aziz", NameArabic: "محمود عبد العزيز", Role: "actor", Nationality: "مصر"},
	{Name: "Soaad Hosny", NameArabic: "سعاد حسني", Role: "actor", Nationality: "مصر"},
	{Name: "Farid Shawqi", NameArabic: "فريد شوقي", Role: "actor", Nationality: "مصر"},
	{Name: "Faten Hamama", NameArabic: "فاتن حمامة", Role: "actor", Nationality: "مصر"},
}

type seedContent struct {
	item       content.Content
	categories []string
	genres     []string
	episodes   int
}

func intPtr(v int) *int {
	return &v
}

func defaultContent() []seedContent {
	return []seedContent{
		{
			item: content.Content{
				Title: "The Yemeni Wedding", TitleArabic: "العرس اليمني",
				Description: "A traditional Yemeni wedding ceremony", DescriptionArabic: "فيلم عن حفل زفاف يمني تقليدي",
				Type: content.TypeMovie, Year: 2024, ReleaseDate: "2024-01-15", Language: "ar",
				Quality: "HD", Resolution: "1080p", Rating: 9.0, Duration: intPtr(120),
				PosterURL: "/serverdata/images/movie-1.svg",
			},
			categories: []string{"Arabic"},
			genres:     []string{"Action", "Drama"},
		},
		{
			item: content.Content{
				Title: "Sana'a Stories", TitleArabic: "حكايات صنعاء",
				Description: "Stories from the heart of Yemen", DescriptionArabic: "مسلسل عن حكايات من قلب اليمن",
				Type: content.TypeSeries, Year: 2024, ReleaseDate: "2024-02-01", Language: "ar",
				Quality: "FHD", Resolution: "1080p", Rating: 8.4, Episodes: intPtr(3),
				PosterURL: "/serverdata/images/series-1.svg",
			},
			categories: []string{"Arabic"},
			genres:     []string{"Drama", "Romance"},
			episodes:   3,
		},
		{
			item: content.Content{
				Title: "Yemen Gaming Championship", TitleArabic: "بطولة اليمن للألعاب",
				Description: "Gaming tournament in Yemen", DescriptionArabic: "برنامج بطولة الألعاب في اليمن",
				Type: content.TypeTV, Year: 2024, ReleaseDate: "2024-03-01", Language: "ar",
				Quality: "HD", Resolution: "720p", Rating: 8.0,
				PosterURL: "/serverdata/images/program-1.svg",
			},
			categories: []string{"Latest"},
			genres:     []string{"Sport"},
		},
		{
			item: content.Content{
				Title: "FIFA 2024 Yemen", TitleArabic: "فيفا 2024 اليمن",
				Description: "FIFA game with Yemen national team", DescriptionArabic: "لعبة فيفا مع المنتخب اليمني",
				Type: content.TypeMisc, Year: 2024, ReleaseDate: "2024-04-01", Language: "ar",
				Quality: "HD", Resolution: "1080p", Rating: 7.6,
				PosterURL: "/serverdata/images/game-1.svg",
			},
			categories: []string{"Latest"},
			genres:     []string{"Sport"},
		},
	}
}

func (m *Manager) seed(ctx context.Context) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := m.seedSettings(tx); err != nil {
			return err
		}
		if err := m.seedAdmin(tx); err != nil {
			return err
		}
		if err := seedLookups(tx); err != nil {
			return err
		}
		if err := seedPeople(tx); err != nil {
			return err
		}
		return seedCatalog(tx)
	})
}

func (m *Manager) seedSettings(tx *gorm.DB) error {
	settings := make([]admin.SiteSetting, len(defaultSettings))
	copy(settings, defaultSettings)
	for i := range settings {
		settings[i].IsActive = true
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_key"}},
		DoNothing: true,
	}).Create(&settings).Error
}

func (m *Manager) seedAdmin(tx *gorm.DB) error {
	var count int64
	if err := tx.Model(&users.User{}).Where("username = ?", "admin").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(m.adminPassword, m.bcryptCost)
	if err != nil {
		return err
	}
	account := users.User{
		Username:     "admin",
		Email:        "admin@ak.sv",
		PasswordHash: hash,
		FirstName:    "مدير",
		LastName:     "النظام",
		IsAdmin:      true,
		IsActive:     true,
	}
	if err := tx.Create(&account).Error; err != nil {
		return err
	}
	settings := users.DefaultNotificationSettings(account.ID)
	return tx.Create(&settings).Error
}

func seedLookups(tx *gorm.DB) error {
	categories := make([]content.Category, len(defaultCategories))
	copy(categories, defaultCategories)
	for i := range categories {
		categories[i].OrderIndex = i + 1
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&categories).Error; err != nil {
		return err
	}

	genres := make([]content.Genre, len(defaultGenres))
	copy(genres, defaultGenres)
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&genres).Error
}

func seedPeople(tx *gorm.DB) error {
	var count int64
	if err := tx.Model(&enhanced.CastMember{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	people := make([]enhanced.CastMember, len(defaultPeople))
	copy(people, defaultPeople)
	return tx.Create(&people).Error
}

func seedCatalog(tx *gorm.DB) error {
	var count int64
	if err := tx.Model(&content.Content{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, sc := range defaultContent() {
		item := sc.item
		item.IsActive = true

		if err := tx.Where("name IN ?", sc.categories).Find(&item.Categories).Error; err != nil {
			return err
		}
		if err := tx.Where("name IN ?", sc.genres).Find(&item.Genres).Error; err != nil {
			return err
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}

		for n := 1; n <= sc.episodes; n++ {
			ep := content.Episode{
				ContentID:     item.ID,
				SeasonNumber:  1,
				EpisodeNumber: n,
				Title:         item.Title,
				TitleArabic:   item.TitleArabic,
				Duration:      45,
				Quality:       item.Quality,
				Resolution:    item.Resolution,
				Language:      item.Language,
				IsActive:      true,
			}
			if err := tx.Create(&ep).Error; err != nil {
				return err
			}
		}

		if item.Type == content.TypeMovie {
			links := []interface{}{
				&content.StreamingLink{ContentID: item.ID, ServerName: "main", URL: "/stream/" + item.Title, Quality: item.Quality, IsActive: true},
				&content.DownloadLink{ContentID: item.ID, ServerName: "main", URL: "/download/" + item.Title, Quality: item.Quality, Size: "1.2GB", IsActive: true},
			}
			for _, l := range links {
				if err := tx.Create(l).Error; err != nil {
					return err
				}
			}
		}
	}
	return nil
}
