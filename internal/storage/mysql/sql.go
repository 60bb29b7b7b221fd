package mysql

const insertUnitSQL = `
INSERT INTO units
  (owner_id, title, description, type, cost_per_day, number_of_rooms, floor)
VALUES
  (?, ?, ?, ?, ?, ?, ?)
`

const getUnitSQL = `
SELECT id, owner_id, title, description, type, cost_per_day, number_of_rooms, floor, created_at
FROM units
WHERE id = ?
`

const listUnitsSQL = `
SELECT id, owner_id, title, description, type, cost_per_day, number_of_rooms, floor, created_at
FROM units
ORDER BY id
`

const getUserSQL = `
SELECT id, name, email, created_at
FROM users
WHERE id = ?
`

// Taken before the overlap re-check inside the booking transaction. Holding
// the unit row lock until commit serializes concurrent bookings of the same
// unit without any in-process lock.
const lockUnitSQL = `
SELECT id FROM units WHERE id = ? FOR UPDATE
`

// Half-open overlap predicate: [start_date, end_date) intersects [?, ?) iff
// start_date < end AND end_date > start. The same predicate backs the
// conflict check and availability counting.
const countOverlappingPrefix = `
SELECT COUNT(*) FROM bookings
WHERE unit_id = ? AND start_date < ? AND end_date > ? AND status IN `

const findOverlappingPrefix = `
SELECT id, unit_id, user_id, start_date, end_date, status, created_at
FROM bookings
WHERE unit_id = ? AND start_date < ? AND end_date > ? AND status IN `

const insertBookingSQL = `
INSERT INTO bookings (unit_id, user_id, start_date, end_date, status, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`

const insertPaymentSQL = `
INSERT INTO payments (booking_id, amount, status, payment_time, created_at)
VALUES (?, ?, ?, ?, ?)
`

const getBookingSQL = `
SELECT id, unit_id, user_id, start_date, end_date, status, created_at
FROM bookings
WHERE id = ?
`

const getPaymentSQL = `
SELECT booking_id, amount, status, payment_time, created_at
FROM payments
WHERE booking_id = ?
`

const listBookingsSQL = `
SELECT id, unit_id, user_id, start_date, end_date, status, created_at
FROM bookings
ORDER BY id
`

// Status transition guarded by the expected current status: zero affected
// rows means either a missing booking or a concurrent transition.
const transitionBookingSQL = `
UPDATE bookings SET status = ? WHERE id = ? AND status = ?
`

const bookingExistsSQL = `
SELECT COUNT(*) FROM bookings WHERE id = ?
`

const updatePaymentSQL = `
UPDATE payments SET status = ?, payment_time = ? WHERE booking_id = ?
`

const insertEventSQL = `
INSERT INTO events (entity_type, entity_id, event_type, payload)
VALUES (?, ?, ?, ?)
`
