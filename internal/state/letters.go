package state

import "slices"

// buildLetterStack returns A..Z followed by AA..ZZ.
func buildLetterStack() []string {
	stack := make([]string, 0, 26+26*26)
	for c := 'A'; c <= 'Z'; c++ {
		stack = append(stack, string(c))
	}
	for a := 'A'; a <= 'Z'; a++ {
		for c := 'A'; c <= 'Z'; c++ {
			stack = append(stack, string([]rune{a, c}))
		}
	}
	return stack
}

// letterLess orders labels the way the stack is seeded: shorter first, then
// alphabetically, so "Z" sorts before "AA".
func letterLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

// AllocateLetter pops the next free letter for owner. An exhausted stack
// yields "A".
func (b *Board) AllocateLetter(owner string) string {
	owner = b.resolve(owner)
	b.mu.Lock()
	defer b.mu.Unlock()
	o := b.ownerLocked(owner)
	if len(o.letters) == 0 {
		return "A"
	}
	next := o.letters[0]
	o.letters = o.letters[1:]
	return next
}

// ReleaseLetter puts a letter back at its ordered position in the owner's
// stack. Letters already in the stack are left alone.
func (b *Board) ReleaseLetter(owner, letter string) {
	if letter == "" {
		return
	}
	owner = b.resolve(owner)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.releaseLetterLocked(b.ownerLocked(owner), letter)
}

func (b *Board) releaseLetterLocked(o *ownerState, letter string) {
	if slices.Contains(o.letters, letter) {
		return
	}
	at := len(o.letters)
	for i, l := range o.letters {
		if letterLess(letter, l) {
			at = i
			break
		}
	}
	o.letters = slices.Insert(o.letters, at, letter)
}

func (b *Board) claimLetterLocked(o *ownerState, letter string) {
	if i := slices.Index(o.letters, letter); i >= 0 {
		o.letters = slices.Delete(o.letters, i, i+1)
	}
}

// NextLetter peeks at the letter AllocateLetter would return.
func (b *Board) NextLetter(owner string) string {
	owner = b.resolve(owner)
	b.mu.RLock()
	defer b.mu.RUnlock()
	o, ok := b.owners[owner]
	if !ok {
		return "A"
	}
	if len(o.letters) == 0 {
		return "A"
	}
	return o.letters[0]
}

// Letters returns a copy of the owner's remaining letters.
func (b *Board) Letters(owner string) []string {
	owner = b.resolve(owner)
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.ownerLocked(owner).letters)
}
