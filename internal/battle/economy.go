package battle

// TurnEconomy tracks the Full and Blink turns of one round.
type TurnEconomy struct {
	Full  int
	Blink int

	paidWithFull bool // last SpendBase touched Full
}

// Consumption is what one action actually took from and gave to the economy.
type Consumption struct {
	FullUsed    int
	BlinkUsed   int
	BlinkGained int
}

// Changed reports whether anything moved.
func (c Consumption) Changed() bool {
	return c.FullUsed != 0 || c.BlinkUsed != 0 || c.BlinkGained != 0
}

// NewTurnEconomy starts a round with one Full turn per acting unit.
func NewTurnEconomy(full int) *TurnEconomy {
	return &TurnEconomy{Full: max(0, full)}
}

// SpendBase pays cost one unit at a time, Blink first.
func (e *TurnEconomy) SpendBase(cost int) (fullUsed, blinkUsed int) {
	e.paidWithFull = false
	for i := 0; i < cost; i++ {
		if e.Blink > 0 {
			e.Blink--
			blinkUsed++
			continue
		}
		e.Full--
		fullUsed++
		e.paidWithFull = true
	}
	return fullUsed, blinkUsed
}

// SpendExtraBlink takes up to amount Blink turns and stops at zero.
func (e *TurnEconomy) SpendExtraBlink(amount int) int {
	taken := min(max(0, amount), e.Blink)
	e.Blink -= taken
	return taken
}

// GainBlink adds Blink turns only if the last base spend used a Full turn.
func (e *TurnEconomy) GainBlink(amount int) int {
	if !e.paidWithFull {
		return 0
	}
	gained := max(0, amount)
	e.Blink += gained
	return gained
}

// CanContinue reports whether the round may go on.
func (e *TurnEconomy) CanContinue(battleOver bool) bool {
	return (e.Full > 0 || e.Blink > 0) && !battleOver
}

// Apply charges an action's effect: base cost, extra blink, then reward.
func (e *TurnEconomy) Apply(effect ActionEffect) Consumption {
	var c Consumption
	c.FullUsed, c.BlinkUsed = e.SpendBase(effect.FullCost)
	c.BlinkUsed += e.SpendExtraBlink(effect.BlinkExtraCost)
	c.BlinkGained = e.GainBlink(effect.BlinkGain)
	return c
}
