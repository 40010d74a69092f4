package models

import "time"

// Meta carries the fields shared by every collection record: the immutable
// string id and the soft-delete stamp. Entities embed it so the lifecycle
// layer can work across collections.
type Meta struct {
	ID        string     `json:"id"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

func (m *Meta) RecordID() string         { return m.ID }
func (m *Meta) SetRecordID(id string)    { m.ID = id }
func (m *Meta) Deleted() *time.Time      { return m.DeletedAt }
func (m *Meta) SetDeleted(at *time.Time) { m.DeletedAt = at }

// Announcement categories (fixed vocabulary).
const (
	CategoryEvent    = "Event"
	CategoryNews     = "News"
	CategoryUrgent   = "Urgent"
	CategoryAcademic = "Academic"
)

type Announcement struct {
	Meta
	Title      string `json:"title"`
	Content    string `json:"content"`
	Date       string `json:"date"`
	Image      string `json:"image"`
	Category   string `json:"category"`
	IsFeatured bool   `json:"isFeatured,omitempty"`
}

func (a *Announcement) PayloadRef() string     { return a.Image }
func (a *Announcement) SetPayloadRef(v string) { a.Image = v }

type StaffMember struct {
	Meta
	Name       string `json:"name"`
	Role       string `json:"role"`
	Bio        string `json:"bio"`
	Image      string `json:"image"`
	Department string `json:"department"`
	Email      string `json:"email"`
}

func (s *StaffMember) PayloadRef() string     { return s.Image }
func (s *StaffMember) SetPayloadRef(v string) { s.Image = v }

type GalleryItem struct {
	Meta
	URL        string `json:"url"`
	Caption    string `json:"caption"`
	Category   string `json:"category"`
	IsFeatured bool   `json:"isFeatured,omitempty"`
}

func (g *GalleryItem) PayloadRef() string     { return g.URL }
func (g *GalleryItem) SetPayloadRef(v string) { g.URL = v }

type CurriculumBook struct {
	Meta
	Title       string `json:"title"`
	Category    string `json:"category"`
	FileURL     string `json:"fileUrl"`
	FileName    string `json:"fileName"`
	Description string `json:"description,omitempty"`
}

func (b *CurriculumBook) PayloadRef() string     { return b.FileURL }
func (b *CurriculumBook) SetPayloadRef(v string) { b.FileURL = v }

// Academic divisions for past papers.
const (
	DivisionOLevel = "O-Level"
	DivisionALevel = "A-Level"
)

type PastPaper struct {
	Meta
	Title    string `json:"title"`
	Subject  string `json:"subject"`
	Year     int    `json:"year"`
	Division string `json:"division"`
	// Section references an ALevelSection by display name, not id. Deleting
	// a section leaves this label dangling on purpose.
	Section  string `json:"section,omitempty"`
	FileURL  string `json:"fileUrl"`
	FileName string `json:"fileName"`
}

func (p *PastPaper) PayloadRef() string     { return p.FileURL }
func (p *PastPaper) SetPayloadRef(v string) { p.FileURL = v }

// ALevelSection is a small controlled vocabulary classifying past papers by
// academic track. Sections have no soft-delete lifecycle.
type ALevelSection struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type AlumniStory struct {
	Meta
	Name      string `json:"name"`
	ClassYear string `json:"classYear"`
	Role      string `json:"role"`
	Quote     string `json:"quote"`
	Image     string `json:"image"`
}

func (a *AlumniStory) PayloadRef() string     { return a.Image }
func (a *AlumniStory) SetPayloadRef(v string) { a.Image = v }

type AlumniJoinRequest struct {
	Meta
	Name      string `json:"name"`
	Email     string `json:"email"`
	ClassYear string `json:"classYear"`
	Message   string `json:"message"`
	Date      string `json:"date"`
}

// Contact message statuses.
const (
	MessageNew     = "new"
	MessageRead    = "read"
	MessageReplied = "replied"
	MessageFailed  = "failed"
)

// Reply delivery statuses.
const (
	DeliveryDelivered = "delivered"
	DeliveryFailed    = "failed"
)

type Reply struct {
	ID             string `json:"id"`
	AdminName      string `json:"adminName"`
	Text           string `json:"text"`
	Timestamp      string `json:"timestamp"`
	DeliveryStatus string `json:"deliveryStatus"`
}

type ContactMessage struct {
	Meta
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Subject string  `json:"subject"`
	Message string  `json:"message"`
	Date    string  `json:"date"`
	Status  string  `json:"status"`
	Replies []Reply `json:"replies"`
}

// User roles.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User is persisted inside the users document, digest included; the HTTP
// layer only ever returns PublicUser.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"`
	Role         string `json:"role"`
}

type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type HomeConfig struct {
	HeroTitle    string `json:"heroTitle"`
	HeroSubtitle string `json:"heroSubtitle"`
	HeroImage    string `json:"heroImage"`
	SchoolBrief  string `json:"schoolBrief"`
}

type DailyTrend struct {
	Date  string `json:"date"`
	Views int    `json:"views"`
}

type TrafficStats struct {
	TotalVisitors  int            `json:"totalVisitors"`
	PageViews      map[string]int `json:"pageViews"`
	DailyTrends    []DailyTrend   `json:"dailyTrends"`
	ActiveVisitors int            `json:"activeVisitors"`
}

// LoginCounter tracks consecutive failures for one username.
type LoginCounter struct {
	FailedAttempts int        `json:"failedAttempts"`
	LockedUntil    *time.Time `json:"lockedUntil,omitempty"`
}

// LoginSecurity is the login_security document. Counters are kept
// per-username so one abused identity cannot lock out every operator.
type LoginSecurity struct {
	Accounts map[string]LoginCounter `json:"accounts"`
}

type DiagnosticResult struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Value       string `json:"value"`
	Status      string `json:"status"`
	Description string `json:"description"`
}
