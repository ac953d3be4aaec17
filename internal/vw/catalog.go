package vw

import (
	"fmt"
	"sort"
)

// Catalog holds the static move and card definitions.
type Catalog struct {
	moves map[string]MoveTemplate
	cards map[string]CardTemplate
}

// NewCatalog validates the templates and indexes them by name.
func NewCatalog(moves []MoveTemplate, cards []CardTemplate) (*Catalog, error) {
	c := &Catalog{
		moves: make(map[string]MoveTemplate, len(moves)),
		cards: make(map[string]CardTemplate, len(cards)),
	}
	for _, m := range moves {
		if err := m.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.moves[m.Name]; dup {
			return nil, fmt.Errorf("duplicate move %q", m.Name)
		}
		c.moves[m.Name] = m
	}
	for _, card := range cards {
		if err := card.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.cards[card.Name]; dup {
			return nil, fmt.Errorf("duplicate card %q", card.Name)
		}
		c.cards[card.Name] = card
	}
	return c, nil
}

// Move looks up a move template.
func (c *Catalog) Move(name string) (MoveTemplate, bool) {
	m, ok := c.moves[name]
	return m, ok
}

// Card looks up a card template.
func (c *Catalog) Card(name string) (CardTemplate, bool) {
	card, ok := c.cards[name]
	return card, ok
}

// MoveNames returns all move names in sorted order.
func (c *Catalog) MoveNames() []string {
	names := make([]string, 0, len(c.moves))
	for n := range c.moves {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// CardNames returns all card names in sorted order.
func (c *Catalog) CardNames() []string {
	names := make([]string, 0, len(c.cards))
	for n := range c.cards {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
