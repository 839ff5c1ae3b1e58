package entity

import (
	"strings"
	"time"
)

// 알려진 컬렉션명
const (
	ClassesCollection       = "classes"
	PricingCollection       = "pricing"
	TestimonialsCollection  = "testimonials"
	FAQCollection           = "faq"
	ModulesCollection       = "modules"
	LeadsCollection         = "leads"
	RegistrationsCollection = "registrations"
	AdminsCollection        = "admins"
)

// FieldIsCurrentClass는 현재 모집 중인 기수 표시 필드입니다
const FieldIsCurrentClass = "isCurrentClass"

// ContentCollections는 공개 페이지에서 읽고 관리자가 수정하는 컬렉션입니다
var ContentCollections = []string{
	ClassesCollection,
	PricingCollection,
	TestimonialsCollection,
	FAQCollection,
	ModulesCollection,
}

// IsContentCollection은 공개 컨텐츠 컬렉션인지 확인합니다
func IsContentCollection(name string) bool {
	for _, c := range ContentCollections {
		if c == name {
			return true
		}
	}
	return false
}

// Shape는 컬렉션별로 검증된 문서 형태입니다
type Shape interface {
	// Collection은 저장될 컬렉션명입니다
	Collection() string
	// Fields는 값이 없는 선택 필드를 생략한 필드 묶음입니다 (생성용)
	Fields() Fields
	// UpdateFields는 비어 있는 선택 필드도 0 값이나 nil로 담은 필드 묶음입니다.
	// 병합 수정에서 이전 값을 지우려면 키가 있어야 합니다
	UpdateFields() Fields
	// Label은 감사 로그에 남길 사람이 읽을 수 있는 이름입니다
	Label() string
}

// Checker는 태그로 표현할 수 없는 필드 간 규칙을 가진 Shape가 구현합니다
type Checker interface {
	Check() error
}

// Class는 교육 기수입니다
type Class struct {
	Name           string     `json:"name" validate:"required,max=200"`
	Number         int        `json:"number" validate:"required,gt=0"`
	StartDate      *time.Time `json:"startDate,omitempty"`
	EndDate        *time.Time `json:"endDate,omitempty"`
	Seats          int        `json:"seats,omitempty" validate:"gte=0"`
	IsCurrentClass *bool      `json:"isCurrentClass,omitempty"`
}

func (c *Class) Collection() string { return ClassesCollection }
func (c *Class) Label() string { return c.Name }

func (c *Class) Check() error {
	if c.StartDate != nil && c.EndDate != nil && c.EndDate.Before(*c.StartDate) {
		return NewValidationError("endDate", "must not be before startDate")
	}
	return nil
}

func (c *Class) Fields() Fields {
	f := Fields{"name": c.Name, "number": c.Number}
	if c.StartDate != nil {
		f["startDate"] = c.StartDate.UTC()
	}
	if c.EndDate != nil {
		f["endDate"] = c.EndDate.UTC()
	}
	if c.Seats > 0 {
		f["seats"] = c.Seats
	}
	if c.IsCurrentClass != nil {
		f[FieldIsCurrentClass] = *c.IsCurrentClass
	}
	return f
}

// UpdateFields는 isCurrentClass 값이 있을 때만 담습니다. 현재 기수 표시는 ClassService가 관리합니다
func (c *Class) UpdateFields() Fields {
	f := Fields{
		"name":      c.Name,
		"number":    c.Number,
		"startDate": optionalTime(c.StartDate),
		"endDate":   optionalTime(c.EndDate),
		"seats":     c.Seats,
	}
	if c.IsCurrentClass != nil {
		f[FieldIsCurrentClass] = *c.IsCurrentClass
	}
	return f
}

// PricingPlan은 가격 플랜입니다
type PricingPlan struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Price       float64  `json:"price" validate:"gte=0"`
	Currency    string   `json:"currency" validate:"required,len=3,alpha"`
	ClassID     string   `json:"classId,omitempty"`
	Features    []string `json:"features,omitempty" validate:"dive,required"`
	Highlighted *bool    `json:"highlighted,omitempty"`
}

func (p *PricingPlan) Collection() string { return PricingCollection }
func (p *PricingPlan) Label() string { return p.Name }

func (p *PricingPlan) Fields() Fields {
	f := Fields{
		"name":     p.Name,
		"price":    p.Price,
		"currency": strings.ToUpper(p.Currency),
	}
	if p.ClassID != "" {
		f["classId"] = p.ClassID
	}
	if len(p.Features) > 0 {
		f["features"] = stringsToAny(p.Features)
	}
	if p.Highlighted != nil {
		f["highlighted"] = *p.Highlighted
	}
	return f
}

func (p *PricingPlan) UpdateFields() Fields {
	return Fields{
		"name":        p.Name,
		"price":       p.Price,
		"currency":    strings.ToUpper(p.Currency),
		"classId":     p.ClassID,
		"features":    stringsToAny(p.Features),
		"highlighted": p.Highlighted != nil && *p.Highlighted,
	}
}

// Testimonial은 수강 후기입니다
type Testimonial struct {
	Author    string `json:"author" validate:"required,max=200"`
	Quote     string `json:"quote" validate:"required"`
	Role      string `json:"role,omitempty"`
	Rating    int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Published *bool  `json:"published,omitempty"`
}

func (t *Testimonial) Collection() string { return TestimonialsCollection }
func (t *Testimonial) Label() string { return t.Author }

func (t *Testimonial) Fields() Fields {
	f := Fields{"author": t.Author, "quote": t.Quote}
	if t.Role != "" {
		f["role"] = t.Role
	}
	if t.Rating > 0 {
		f["rating"] = t.Rating
	}
	if t.Published != nil {
		f["published"] = *t.Published
	}
	return f
}

func (t *Testimonial) UpdateFields() Fields {
	return Fields{
		"author":    t.Author,
		"quote":     t.Quote,
		"role":      t.Role,
		"rating":    t.Rating,
		"published": t.Published != nil && *t.Published,
	}
}

// FAQItem은 자주 묻는 질문 항목입니다
type FAQItem struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
	Order    int    `json:"order,omitempty" validate:"gte=0"`
}

func (q *FAQItem) Collection() string { return FAQCollection }
func (q *FAQItem) Label() string { return q.Question }

func (q *FAQItem) Fields() Fields {
	f := Fields{"question": q.Question, "answer": q.Answer}
	if q.Order > 0 {
		f["order"] = q.Order
	}
	return f
}

func (q *FAQItem) UpdateFields() Fields {
	return Fields{"question": q.Question, "answer": q.Answer, "order": q.Order}
}

// CourseModule은 커리큘럼 모듈입니다
type CourseModule struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description,omitempty"`
	Order       int      `json:"order,omitempty" validate:"gte=0"`
	Lessons     []string `json:"lessons,omitempty" validate:"dive,required"`
}

func (m *CourseModule) Collection() string { return ModulesCollection }
func (m *CourseModule) Label() string { return m.Title }

func (m *CourseModule) Fields() Fields {
	f := Fields{"title": m.Title}
	if m.Description != "" {
		f["description"] = m.Description
	}
	if m.Order > 0 {
		f["order"] = m.Order
	}
	if len(m.Lessons) > 0 {
		f["lessons"] = stringsToAny(m.Lessons)
	}
	return f
}

func (m *CourseModule) UpdateFields() Fields {
	return Fields{
		"title":       m.Title,
		"description": m.Description,
		"order":       m.Order,
		"lessons":     stringsToAny(m.Lessons),
	}
}

// Lead는 공개 문의 폼 제출입니다
type Lead struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Message string `json:"message,omitempty" validate:"max=5000"`
	Source  string `json:"source,omitempty"`
}

func (l *Lead) Collection() string { return LeadsCollection }
func (l *Lead) Label() string { return l.Name }

func (l *Lead) Fields() Fields {
	f := Fields{"name": l.Name, "email": strings.ToLower(l.Email)}
	if l.Phone != "" {
		f["phone"] = l.Phone
	}
	if l.Message != "" {
		f["message"] = l.Message
	}
	if l.Source != "" {
		f["source"] = l.Source
	}
	return f
}

func (l *Lead) UpdateFields() Fields {
	return Fields{
		"name":    l.Name,
		"email":   strings.ToLower(l.Email),
		"phone":   l.Phone,
		"message": l.Message,
		"source":  l.Source,
	}
}

// Registration은 기수 수강 신청입니다
type Registration struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	ClassID string `json:"classId" validate:"required"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Company string `json:"company,omitempty"`
}

func (r *Registration) Collection() string { return RegistrationsCollection }
func (r *Registration) Label() string { return r.Name }

func (r *Registration) Fields() Fields {
	f := Fields{
		"name":    r.Name,
		"email":   strings.ToLower(r.Email),
		"classId": r.ClassID,
	}
	if r.Phone != "" {
		f["phone"] = r.Phone
	}
	if r.Company != "" {
		f["company"] = r.Company
	}
	return f
}

func (r *Registration) UpdateFields() Fields {
	return Fields{
		"name":    r.Name,
		"email":   strings.ToLower(r.Email),
		"classId": r.ClassID,
		"phone":   r.Phone,
		"company": r.Company,
	}
}

// NewShape는 컬렉션명에 맞는 빈 Shape를 반환합니다
func NewShape(collection string) (Shape, bool) {
	switch collection {
	case ClassesCollection:
		return &Class{}, true
	case PricingCollection:
		return &PricingPlan{}, true
	case TestimonialsCollection:
		return &Testimonial{}, true
	case FAQCollection:
		return &FAQItem{}, true
	case ModulesCollection:
		return &CourseModule{}, true
	case LeadsCollection:
		return &Lead{}, true
	case RegistrationsCollection:
		return &Registration{}, true
	default:
		return nil, false
	}
}

// optionalTime은 nil 포인터를 nil 필드 값으로 둡니다
func optionalTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func stringsToAny(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
