package content

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var defaultContent []byte

// Site is everything the portfolio pages display.
type Site struct {
	Profile        Profile         `yaml:"profile"`
	About          About           `yaml:"about"`
	Skills         []Skill         `yaml:"skills" validate:"dive"`
	Projects       []Project       `yaml:"projects" validate:"dive"`
	Experience     []Entry         `yaml:"experience" validate:"dive"`
	Education      []Entry         `yaml:"education" validate:"dive"`
	SocialLinks    []Link          `yaml:"social_links" validate:"dive"`
	NavLinks       []Link          `yaml:"nav_links" validate:"dive"`
	FooterLinks    []Link          `yaml:"footer_links" validate:"dive"`
	ContactMethods []ContactMethod `yaml:"contact_methods" validate:"dive"`
	Services       []string        `yaml:"services" validate:"dive,required"`
}

type Profile struct {
	Name      string   `yaml:"name" validate:"required"`
	Headline  string   `yaml:"headline"`
	Roles     []string `yaml:"roles"`
	Tagline   string   `yaml:"tagline"`
	ResumeURL string   `yaml:"resume_url"`
	Avatar    string   `yaml:"avatar"`
	Email     string   `yaml:"email" validate:"omitempty,email"`
	Phone     string   `yaml:"phone"`
	Location  string   `yaml:"location"`
}

type About struct {
	Paragraphs []string `yaml:"paragraphs"`
	Stats      []Stat   `yaml:"stats"`
	Values     []Value  `yaml:"values"`
	Learning   []Skill  `yaml:"learning"`
}

type Stat struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

type Value struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

type Skill struct {
	Name  string `yaml:"name" validate:"required"`
	Icon  string `yaml:"icon"`
	Level string `yaml:"level"`
}

type Project struct {
	ID          int      `yaml:"id" validate:"required"`
	Title       string   `yaml:"title" validate:"required"`
	Description string   `yaml:"description"`
	Image       string   `yaml:"image"`
	LiveLink    string   `yaml:"live_link" validate:"omitempty,url"`
	SourceCode  string   `yaml:"source_code" validate:"omitempty,url"`
	Tags        []string `yaml:"tags"`
	Featured    bool     `yaml:"featured"`
}

// Entry is a job or a course of study.
type Entry struct {
	Title        string   `yaml:"title" validate:"required"`
	Organization string   `yaml:"organization" validate:"required"`
	Start        string   `yaml:"start"`
	End          string   `yaml:"end"`
	Logo         string   `yaml:"logo"`
	Highlights   []string `yaml:"highlights"`
}

type Link struct {
	Label string `yaml:"label" validate:"required"`
	Href  string `yaml:"href" validate:"required"`
	Icon  string `yaml:"icon"`
}

type ContactMethod struct {
	ID          string `yaml:"id" validate:"required"`
	Title       string `yaml:"title" validate:"required"`
	Description string `yaml:"description"`
	Action      string `yaml:"action" validate:"required"`
}

// Load reads site content from path, or the embedded default when path is empty.
func Load(path string) (*Site, error) {
	if path == "" {
		return Parse(defaultContent)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and checks site content.
func Parse(data []byte) (*Site, error) {
	var site Site
	if err := yaml.Unmarshal(data, &site); err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	if err := validator.New().Struct(&site); err != nil {
		return nil, fmt.Errorf("invalid content: %w", err)
	}

	seen := make(map[int]bool, len(site.Projects))
	for _, p := range site.Projects {
		if seen[p.ID] {
			return nil, fmt.Errorf("invalid content: duplicate project id %d", p.ID)
		}
		seen[p.ID] = true
	}
	return &site, nil
}

// PreviewProjects returns the first n projects.
func (s *Site) PreviewProjects(n int) []Project {
	if n < 0 || n >= len(s.Projects) {
		return s.Projects
	}
	return s.Projects[:n]
}

// Project finds a project by id.
func (s *Site) Project(id int) (Project, bool) {
	for _, p := range s.Projects {
		if p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}

// HasService reports whether name is one of the offered services.
func (s *Site) HasService(name string) bool {
	for _, svc := range s.Services {
		if svc == name {
			return true
		}
	}
	return false
}
